package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/wildlander/launcher/configs"
	"github.com/wildlander/launcher/internal/application/services"
	"github.com/wildlander/launcher/internal/core/ports"
	"github.com/wildlander/launcher/internal/infrastructure/cache"
	"github.com/wildlander/launcher/internal/infrastructure/db"
	"github.com/wildlander/launcher/internal/infrastructure/email"
	"github.com/wildlander/launcher/internal/infrastructure/health"
	"github.com/wildlander/launcher/internal/infrastructure/httpserver"
	"github.com/wildlander/launcher/internal/infrastructure/redis"
	"github.com/wildlander/launcher/internal/infrastructure/repositories"
	"github.com/wildlander/launcher/internal/infrastructure/telemetry"
	"github.com/wildlander/launcher/internal/utils"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := hashPassword(os.Stdin, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatal("Invalid server configuration:", err)
	}

	logger := config.NewLogger(cfg.Log)
	logger.Info("Starting Wildlander feed service...")

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry, "wildlander-feeds")
	if err != nil {
		logger.WithError(err).Warn("Failed to set up tracing, continuing without it")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()
	logger.WithField("driver", database.Driver).Info("Connected to database successfully")

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations:", err)
	}

	feedStore := repositories.NewFeedRepository(database, logger)
	hcSlice := []ports.HealthChecker{
		health.NewDBHealthChecker(database),
		health.NewFeedStoreHealthChecker(feedStore),
	}

	// Redis is optional: without it reads are cached in memory and the
	// public endpoints are not rate limited.
	var (
		readCache   ports.Cache = cache.NewMemoryCache()
		rateLimiter ports.RateLimiterService
	)
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	switch {
	case errors.Is(err, redis.ErrDisabled):
		logger.Info("Redis not configured, using in-memory read cache")
	case err != nil:
		logger.Fatal("Failed to connect to Redis:", err)
	default:
		defer redisClient.Close()
		logger.Info("Connected to Redis successfully")
		readCache = redis.NewRedisCache(redisClient, "feeds")
		rateLimiter = services.NewRateLimiterService(
			repositories.NewRateLimitRedisRepository(redisClient),
			&services.RateLimiterConfig{
				RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
				BurstMultiplier:   cfg.RateLimit.BurstMultiplier,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         cfg.RateLimit.KeyPrefix,
			},
			logger,
		)
		hcSlice = append(hcSlice, health.NewRedisHealthChecker(redisClient))
	}

	feedRepo := repositories.NewCachingFeedRepository(
		feedStore,
		readCache,
		cfg.Server.ReadCacheTTL,
	)

	var announcer ports.AnnouncementService
	if cfg.Email.SendGridAPIKey != "" {
		a, err := email.NewAnnouncementService(&cfg.Email, logger)
		if err != nil {
			logger.Fatal("Failed to initialize email service:", err)
		}
		announcer = a
	}

	feedService := services.NewFeedService(feedRepo, announcer, logger)
	authService := services.NewAdminAuthService(
		&cfg.Admin,
		&cfg.JWT,
		repositories.NewTokenRevocationRepository(readCache, logger),
		logger,
	)

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		FeedService:        feedService,
		AuthService:        authService,
		RateLimiterService: rateLimiter,
		HealthCheckers:     hcSlice,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{"host": cfg.Server.Host, "port": cfg.Server.Port}).Info("Server started")
	if err := server.Run(ctx, 10*time.Second); err != nil {
		logger.WithError(err).Error("Feed server exited with error")
		return
	}

	logger.Info("Server exited")
}

// hashPassword reads the publisher password from the first line of in and
// prints its bcrypt hash for ADMIN_PASSWORD_HASH.
func hashPassword(in io.Reader, out io.Writer) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	hash, err := utils.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
