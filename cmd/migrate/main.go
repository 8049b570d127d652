package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/unclebandit/campaignhub-backend/internal/config"
	"github.com/unclebandit/campaignhub-backend/internal/db"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadTool()
	if err != nil {
		fatalf("%v", err)
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	database, err := db.Open(cfg.DB(logger))
	if err != nil {
		fatalf("%v", err)
	}
	defer database.Close()

	m, err := db.NewMigrator(context.Background(), database)
	if err != nil {
		fatalf("migration init failed: %v", err)
	}
	defer m.Close()

	command := args[0]
	switch command {
	case "up":
		if err := m.Up(); err != nil {
			fatalf("up failed: %v", err)
		}
		slog.Info("migrations: up completed")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				fatalf("down: invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Down(steps); err != nil {
			fatalf("down failed: %v", err)
		}
		slog.Info("migrations: down completed", "steps", steps)

	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			fatalf("version failed: %v", err)
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			fatalf("force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			fatalf("force: invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			fatalf("force failed: %v", err)
		}
		slog.Info("migrations: forced", "version", v)

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Rollback N migrations (default: 1)
  version      Print current migration version
  force V      Set version V without running migrations (clears dirty state)

The database is taken from DB_DRIVER and DATABASE_URL (or the DB_* settings).`)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
