// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config describes the connection pool.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// SlowQueryThreshold logs statements slower than this at warn level.
	SlowQueryThreshold time.Duration
	Logger             *slog.Logger
}

// DB wraps the process-wide *sql.DB. Every statement goes through the log
// hook and the driver error mapper.
type DB struct {
	sqldb  *sql.DB
	driver string
	hook   *LogHook
}

// Open opens the pool and pings it.
func Open(cfg Config) (*DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverPostgres
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db: DSN must not be empty")
	}

	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	return &DB{
		sqldb:  sqldb,
		driver: cfg.Driver,
		hook:   NewLogHook(cfg.Logger, cfg.SlowQueryThreshold),
	}, nil
}

// PostgresDSN builds a connection URL from discrete settings.
func PostgresDSN(user, pass, host, port, name, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     host + ":" + port,
		Path:     "/" + name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

func (d *DB) Driver() string { return d.driver }

func (d *DB) Close() error { return d.sqldb.Close() }

func (d *DB) Ping(ctx context.Context) error {
	return d.sqldb.PingContext(ctx)
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := d.sqldb.ExecContext(ctx, query, args...)
	err = mapErr(err)
	d.hook.After(ctx, query, time.Since(start), err)
	return res, err
}

// Query runs a statement returning rows. The caller must close them.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.sqldb.QueryContext(ctx, query, args...)
	err = mapErr(err)
	d.hook.After(ctx, query, time.Since(start), err)
	return rows, err
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	raw := d.sqldb.QueryRowContext(ctx, query, args...)
	return &Row{raw: raw, ctx: ctx, query: query, start: start, hook: d.hook}
}

// Row maps the Scan error the same way Exec and Query do. sql.ErrNoRows
// becomes ErrNotFound.
type Row struct {
	raw   *sql.Row
	ctx   context.Context
	query string
	start time.Time
	hook  *LogHook
}

func (r *Row) Scan(dest ...any) error {
	err := mapErr(r.raw.Scan(dest...))
	if IsNotFound(err) {
		r.hook.After(r.ctx, r.query, time.Since(r.start), nil)
	} else {
		r.hook.After(r.ctx, r.query, time.Since(r.start), err)
	}
	return err
}
