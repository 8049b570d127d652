package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Tx mirrors the DB statement helpers inside a transaction.
type Tx struct {
	sqltx *sql.Tx
	hook  *LogHook
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.sqltx.ExecContext(ctx, query, args...)
	err = mapErr(err)
	t.hook.After(ctx, query, time.Since(start), err)
	return res, err
}

func (t *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.sqltx.QueryContext(ctx, query, args...)
	err = mapErr(err)
	t.hook.After(ctx, query, time.Since(start), err)
	return rows, err
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	raw := t.sqltx.QueryRowContext(ctx, query, args...)
	return &Row{raw: raw, ctx: ctx, query: query, start: start, hook: t.hook}
}

// Stmt is a statement prepared inside a transaction.
type Stmt struct {
	stmt  *sql.Stmt
	query string
	hook  *LogHook
}

func (t *Tx) Prepare(ctx context.Context, query string) (*Stmt, error) {
	s, err := t.sqltx.PrepareContext(ctx, query)
	if err != nil {
		return nil, mapErr(err)
	}
	return &Stmt{stmt: s, query: query, hook: t.hook}, nil
}

func (s *Stmt) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := s.stmt.ExecContext(ctx, args...)
	err = mapErr(err)
	s.hook.After(ctx, s.query, time.Since(start), err)
	return res, err
}

func (s *Stmt) Close() error { return s.stmt.Close() }

// ExecTx runs fn in a transaction. It commits when fn returns nil and rolls
// back on error or panic.
func (d *DB) ExecTx(ctx context.Context, fn func(*Tx) error) (err error) {
	sqltx, err := d.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqltx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqltx.Rollback(); rbErr != nil {
				err = fmt.Errorf("db: rollback failed (%v) after: %w", rbErr, err)
			}
		}
	}()

	if err = fn(&Tx{sqltx: sqltx, hook: d.hook}); err != nil {
		return mapErr(err)
	}
	if err = sqltx.Commit(); err != nil {
		return mapErr(err)
	}
	return nil
}

// Querier is satisfied by both *DB and *Tx.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *Row
}

var (
	_ Querier = (*DB)(nil)
	_ Querier = (*Tx)(nil)
)
