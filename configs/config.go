package configs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Email     EmailConfig
	Redis     RedisConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
	Launcher  LauncherConfig
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	TLSCertFile  string        `env:"TLS_CERT_FILE"`
	TLSKeyFile   string        `env:"TLS_KEY_FILE"`
	// AllowedOrigins restricts CORS; empty allows any origin.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	// ReadCacheTTL bounds how long /api reads are served from the read cache.
	ReadCacheTTL time.Duration `env:"READ_CACHE_TTL" envDefault:"1m"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DSN    string `env:"DB_DSN" envDefault:"file:launcher-feeds.db?_pragma=busy_timeout(5000)"`
	// Connection pool settings
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"5m"`
}

type JWTConfig struct {
	Secret         string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
}

type AdminConfig struct {
	// PasswordHash is a bcrypt hash of the publishing password.
	PasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}

type EmailConfig struct {
	SendGridAPIKey string   `env:"SENDGRID_API_KEY"`
	FromEmail      string   `env:"FROM_EMAIL" envDefault:"noreply@wildlandermod.com"`
	FromName       string   `env:"FROM_NAME" envDefault:"Wildlander"`
	AnnounceTo     []string `env:"ANNOUNCE_TO" envSeparator:","`
	BaseURL        string   `env:"BASE_URL" envDefault:"https://www.wildlandermod.com"`
}

type RedisConfig struct {
	// Addr is host:port; empty disables Redis.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	// Pool and timeout settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	PoolTimeout  time.Duration `env:"REDIS_POOL_TIMEOUT" envDefault:"4s"`
	IdleTimeout  time.Duration `env:"REDIS_IDLE_TIMEOUT" envDefault:"5m"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json or text
}

type RateLimitConfig struct {
	RequestsPerMinute int           `env:"RATE_LIMIT_RPM" envDefault:"120"`
	BurstMultiplier   float64       `env:"RATE_LIMIT_BURST" envDefault:"2.0"`
	Window            time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	KeyPrefix         string        `env:"RATE_LIMIT_KEY_PREFIX" envDefault:"ratelimit:client"`
}

type TelemetryConfig struct {
	Endpoint string `env:"OTEL_ENDPOINT"`
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

type LauncherConfig struct {
	APIBaseURL string `env:"LAUNCHER_API_URL" envDefault:"https://launcher.wildlandermod.com"`
	// CacheBackend is one of sqlite, redis or memory.
	CacheBackend string        `env:"LAUNCHER_CACHE_BACKEND" envDefault:"sqlite"`
	CacheDSN     string        `env:"LAUNCHER_CACHE_DSN" envDefault:"file:launcher-cache.db?_pragma=busy_timeout(5000)"`
	NewsRSSURL   string        `env:"LAUNCHER_NEWS_RSS_URL"`
	HTTPTimeout  time.Duration `env:"LAUNCHER_HTTP_TIMEOUT" envDefault:"10s"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	switch cfg.Launcher.CacheBackend {
	case "sqlite", "redis", "memory":
	default:
		return nil, fmt.Errorf("unsupported LAUNCHER_CACHE_BACKEND %q", cfg.Launcher.CacheBackend)
	}
	return cfg, nil
}

// ValidateServer checks the settings only the feed backend needs.
func (c *Config) ValidateServer() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.Admin.PasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH is not set"))
	}
	return errors.Join(errs...)
}

// NewLogger builds the process logger from LogConfig.
func NewLogger(cfg LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}
