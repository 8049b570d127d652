// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/unclebandit/campaignhub-backend/internal/db"
)

type Config struct {
	Port string

	DBDriver          string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBSlowQuery       time.Duration
	AutoMigrate       bool

	JWTSecret string
	TokenTTL  time.Duration

	CORSOrigins []string

	RateLimitRPM   int
	RateLimitBurst int

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	LogLevel  slog.Level
	LogFormat string
}

// Load reads .env (if any) and then the process environment.
func Load() (*Config, error) {
	loadDotEnv()
	return FromEnv(os.Getenv)
}

// LoadTool is Load for the migrate and worker binaries, which
// never issue or verify tokens and so run without JWT_SECRET.
func LoadTool() (*Config, error) {
	loadDotEnv()
	return fromEnv(os.Getenv, false)
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("⚠️ No .env file found, relying on OS environment variables")
	}
}

// FromEnv builds a Config from a lookup function. Missing keys fall back to
// defaults; malformed values are errors.
func FromEnv(getenv func(string) string) (*Config, error) {
	return fromEnv(getenv, true)
}

func fromEnv(getenv func(string) string, needSecret bool) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		Port:              p.str("PORT", "5000"),
		DBDriver:          p.str("DB_DRIVER", db.DriverPostgres),
		DBMaxOpenConns:    p.int("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    p.int("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: p.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBSlowQuery:       p.duration("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),
		AutoMigrate:       p.bool("AUTO_MIGRATE", true),
		JWTSecret:         getenv("JWT_SECRET"),
		TokenTTL:          p.duration("TOKEN_TTL", 7*24*time.Hour),
		CORSOrigins:       p.list("CORS_ORIGINS", []string{"*"}),
		RateLimitRPM:      p.int("RATE_LIMIT_RPM", 20),
		RateLimitBurst:    p.int("RATE_LIMIT_BURST", 5),
		AMQPURL:           getenv("AMQP_URL"),
		AMQPExchange:      p.str("AMQP_EXCHANGE", "campaignhub.events"),
		AMQPQueue:         p.str("AMQP_QUEUE", "campaignhub.audit"),
		LogFormat:         strings.ToLower(p.str("LOG_FORMAT", "json")),
	}

	if lvl := getenv("LOG_LEVEL"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			p.errs = append(p.errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}

	switch cfg.DBDriver {
	case db.DriverPostgres:
		cfg.DatabaseURL = getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = db.PostgresDSN(
				p.str("DB_USER", "postgres"),
				getenv("DB_PASSWORD"),
				p.str("DB_HOST", "localhost"),
				p.str("DB_PORT", "5432"),
				p.str("DB_NAME", "campaignhub"),
				p.str("DB_SSLMODE", "disable"),
			)
		}
	case db.DriverSQLite:
		cfg.DatabaseURL = p.str("DATABASE_URL", "file:campaignhub.db?_foreign_keys=on")
	default:
		p.errs = append(p.errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DBDriver))
	}

	if needSecret && cfg.JWTSecret == "" {
		p.errs = append(p.errs, errors.New("JWT_SECRET is required"))
	}
	if cfg.TokenTTL <= 0 {
		p.errs = append(p.errs, errors.New("TOKEN_TTL must be positive"))
	}

	if len(p.errs) > 0 {
		return nil, fmt.Errorf("config: %w", errors.Join(p.errs...))
	}
	return cfg, nil
}

// NewLogger builds the process logger from LOG_FORMAT and LOG_LEVEL.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// DB returns the pool settings for db.Open.
func (c *Config) DB(logger *slog.Logger) db.Config {
	return db.Config{
		Driver:             c.DBDriver,
		DSN:                c.DatabaseURL,
		MaxOpenConns:       c.DBMaxOpenConns,
		MaxIdleConns:       c.DBMaxIdleConns,
		ConnMaxLifetime:    c.DBConnMaxLifetime,
		SlowQueryThreshold: c.DBSlowQuery,
		Logger:             logger,
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (p *parser) list(key string, def []string) []string {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
