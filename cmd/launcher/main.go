package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	config "github.com/wildlander/launcher/configs"
	"github.com/wildlander/launcher/internal/application/services"
	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/domain/modpack"
	"github.com/wildlander/launcher/internal/core/ports"
	"github.com/wildlander/launcher/internal/infrastructure/cache"
	"github.com/wildlander/launcher/internal/infrastructure/db"
	"github.com/wildlander/launcher/internal/infrastructure/metrics"
	"github.com/wildlander/launcher/internal/infrastructure/patreonapi"
	"github.com/wildlander/launcher/internal/infrastructure/redis"
	"github.com/wildlander/launcher/internal/infrastructure/repositories"
	"github.com/wildlander/launcher/internal/infrastructure/rss"
	"github.com/wildlander/launcher/internal/infrastructure/telemetry"
)

const usage = `usage: launcher <command> [flags]

commands:
  news                 load the news feed
  patrons              load the patron list
  home                 load both feeds concurrently
  watch                reload both feeds on an interval
  check-modpack <dir>  validate a modpack installation directory
  clear-cache          drop the cached feeds
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}
	cmd, rest := args[0], args[1:]

	// check-modpack needs no configuration.
	if cmd == "check-modpack" {
		if len(rest) != 1 {
			return errors.New("usage: launcher check-modpack <dir>")
		}
		return checkModpack(out, rest[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Log)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, "wildlander-launcher")
	if err != nil {
		logger.WithError(err).Warn("Failed to set up tracing, continuing without it")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	store, closeStore, err := openCache(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	switch cmd {
	case "clear-cache":
		return clearCache(ctx, out, store)
	case "news", "patrons", "home":
		feeds := buildFeeds(cfg, store, nil, logger)
		return loadOnce(ctx, out, feeds, cmd)
	case "watch":
		fs := flag.NewFlagSet("watch", flag.ContinueOnError)
		interval := fs.Duration("interval", 5*time.Minute, "reload interval")
		metricsAddr := fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return watch(ctx, out, cfg, store, logger, *interval, *metricsAddr)
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func checkModpack(out io.Writer, dir string) error {
	err := modpack.Validate(dir)
	var verr *modpack.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(out, modpack.InvalidDirectoryTitle)
		fmt.Fprintln(out, verr.Error())
		return errors.New("invalid modpack directory")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is a valid modpack directory\n", dir)
	return nil
}

// openCache opens the configured key/value store for the feed caches.
func openCache(cfg *config.Config, logger *logrus.Logger) (ports.Cache, func(), error) {
	switch cfg.Launcher.CacheBackend {
	case "memory":
		return cache.NewMemoryCache(), func() {}, nil
	case "redis":
		client, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewRedisCache(client, "launcher"), func() { _ = client.Close() }, nil
	default:
		database, err := db.NewDatabase("sqlite", cfg.Launcher.CacheDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open feed cache: %w", err)
		}
		if err := database.Migrate(); err != nil {
			_ = database.Close()
			return nil, nil, fmt.Errorf("migrate feed cache: %w", err)
		}
		logger.WithField("dsn", cfg.Launcher.CacheDSN).Debug("feed cache opened")
		return cache.NewSQLCache(database.DB), func() { _ = database.Close() }, nil
	}
}

func buildFeeds(cfg *config.Config, store ports.Cache, gm ports.GateMetrics, logger *logrus.Logger) *services.LauncherFeeds {
	client := patreonapi.NewClient(cfg.Launcher.APIBaseURL, cfg.Launcher.HTTPTimeout)

	var (
		posts         ports.PostSource = client
		newsFreshness ports.FreshnessSource
	)
	if cfg.Launcher.NewsRSSURL != "" {
		src := rss.NewSource(cfg.Launcher.NewsRSSURL, cfg.Launcher.HTTPTimeout)
		posts, newsFreshness = src, src
	}

	return services.NewLauncherFeeds(services.LauncherFeedsDeps{
		Patreon:       services.NewPatreonService(posts, client),
		Freshness:     client,
		NewsFreshness: newsFreshness,
		PostCache:     repositories.NewFeedCacheRepository[feed.Post](store),
		PatronCache:   repositories.NewFeedCacheRepository[feed.Patron](store),
		Metrics:       gm,
		Logger:        logger,
	})
}

func loadOnce(ctx context.Context, out io.Writer, feeds *services.LauncherFeeds, cmd string) error {
	switch cmd {
	case "news":
		return shownErr(feeds.News.Load(ctx, newsRenderer(out)))
	case "patrons":
		return shownErr(feeds.Patrons.Load(ctx, patronRenderer(out)))
	}

	// home: both gates run concurrently; output is kept per feed.
	var newsOut, patronsOut bytes.Buffer
	g, gctx := errgroup.WithContext(ctx)
	var newsErr, patronsErr error
	g.Go(func() error {
		newsErr = shownErr(feeds.News.Load(gctx, newsRenderer(&newsOut)))
		return nil
	})
	g.Go(func() error {
		patronsErr = shownErr(feeds.Patrons.Load(gctx, patronRenderer(&patronsOut)))
		return nil
	})
	_ = g.Wait()
	_, _ = newsOut.WriteTo(out)
	_, _ = patronsOut.WriteTo(out)
	return errors.Join(newsErr, patronsErr)
}

// shownErr drops the error of a refresh that failed behind a cached view;
// the user still sees the cached content.
func shownErr[T any](res *services.LoadResult[T], err error) error {
	if err != nil && res != nil && res.Decision == feed.DecisionFetchAndReplace {
		return nil
	}
	return err
}

func clearCache(ctx context.Context, out io.Writer, store ports.Cache) error {
	for _, kind := range []feed.Kind{feed.KindPosts, feed.KindPatrons} {
		if err := store.Delete(ctx, kind.CacheKey()); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, "feed cache cleared")
	return nil
}

func watch(ctx context.Context, out io.Writer, cfg *config.Config, store ports.Cache, logger *logrus.Logger, interval time.Duration, metricsAddr string) error {
	reg := prometheus.NewRegistry()
	gm, err := metrics.NewGateMetrics(reg)
	if err != nil {
		return fmt.Errorf("register gate metrics: %w", err)
	}
	feeds := buildFeeds(cfg, store, gm, logger)

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("metrics server stopped")
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	logger.WithField("interval", interval).Info("watching feeds")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		// Feed errors are shown through the renderers; keep watching.
		if err := loadOnce(ctx, out, feeds, "home"); err != nil {
			logger.WithError(err).Debug("feed load ended in error")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
