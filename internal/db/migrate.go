package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	mpostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations for the pool's driver.
// It never closes the pool it was built from.
type Migrator struct {
	m    *migrate.Migrate
	src  source.Driver
	conn *sql.Conn
}

func NewMigrator(ctx context.Context, d *DB) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+d.driver)
	if err != nil {
		return nil, fmt.Errorf("db: migrations for driver %q: %w", d.driver, err)
	}

	var (
		drv  database.Driver
		conn *sql.Conn
	)
	switch d.driver {
	case DriverPostgres:
		conn, err = d.sqldb.Conn(ctx)
		if err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("db: migration connection: %w", err)
		}
		drv, err = mpostgres.WithConnection(ctx, conn, &mpostgres.Config{})
	case DriverSQLite:
		drv, err = msqlite.WithInstance(d.sqldb, &msqlite.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", d.driver)
	}
	if err != nil {
		_ = src.Close()
		if conn != nil {
			_ = conn.Close()
		}
		return nil, fmt.Errorf("db: migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, d.driver, drv)
	if err != nil {
		_ = src.Close()
		if conn != nil {
			_ = conn.Close()
		}
		return nil, fmt.Errorf("db: migrate init: %w", err)
	}
	m.Log = migrateLogger{}

	return &Migrator{m: m, src: src, conn: conn}, nil
}

// Up applies all pending migrations. No pending migrations is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down rolls back n migrations.
func (mg *Migrator) Down(n int) error {
	if err := mg.m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func (mg *Migrator) Force(version int) error {
	return mg.m.Force(version)
}

// Close releases the source and the dedicated connection. migrate.Close is
// not used because the sqlite3 driver would close the shared pool.
func (mg *Migrator) Close() error {
	err := mg.src.Close()
	if mg.conn != nil {
		if cerr := mg.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, d *DB) error {
	mg, err := NewMigrator(ctx, d)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...))
}

func (migrateLogger) Verbose() bool { return false }
