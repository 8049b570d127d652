// internal/repository/owned.go
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/unclebandit/campaignhub-backend/internal/db"
)

type scanner interface {
	Scan(dest ...any) error
}

// ownedTable holds the statements shared by every table whose rows belong
// to a single user. Every statement filters on (id, user_id) so a row owned
// by someone else looks exactly like a missing one.
type ownedTable[T any] struct {
	q       db.Querier
	table   string
	columns string
	scan    func(scanner) (*T, error)
}

// assignment is one "column = value" pair of an INSERT or UPDATE.
type assignment struct {
	column string
	value  any
}

func (t ownedTable[T]) list(ctx context.Context, ownerID int64, filters ...assignment) ([]T, error) {
	where := []string{"user_id = $1"}
	args := []any{ownerID}
	for _, f := range filters {
		args = append(args, f.value)
		where = append(where, fmt.Sprintf("%s = $%d", f.column, len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM   %s
		WHERE  %s
		ORDER  BY created_at DESC, id DESC`,
		t.columns, t.table, strings.Join(where, " AND "))

	rows, err := t.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("repository/%s: scan: %w", t.table, err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// get returns (nil, nil) when no owned row matches.
func (t ownedTable[T]) get(ctx context.Context, id, ownerID int64) (*T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND user_id = $2`, t.columns, t.table)
	return t.one(t.q.QueryRow(ctx, query, id, ownerID))
}

func (t ownedTable[T]) exists(ctx context.Context, id, ownerID int64) (bool, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = $1 AND user_id = $2`, t.table)
	var n int
	if err := t.q.QueryRow(ctx, query, id, ownerID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t ownedTable[T]) insert(ctx context.Context, values []assignment) (*T, error) {
	cols := make([]string, len(values))
	marks := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		cols[i] = v.column
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = v.value
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (%s)
		RETURNING %s`,
		t.table, strings.Join(cols, ", "), strings.Join(marks, ", "), t.columns)

	return t.one(t.q.QueryRow(ctx, query, args...))
}

// update writes sets in one statement scoped to the owner and returns the
// fresh row, or (nil, nil) when nothing matched.
func (t ownedTable[T]) update(ctx context.Context, id, ownerID int64, sets []assignment) (*T, error) {
	clauses := make([]string, len(sets))
	args := make([]any, 0, len(sets)+2)
	for i, s := range sets {
		args = append(args, s.value)
		clauses[i] = fmt.Sprintf("%s = $%d", s.column, len(args))
	}
	args = append(args, id, ownerID)

	query := fmt.Sprintf(`
		UPDATE %s
		SET    %s
		WHERE  id = $%d AND user_id = $%d
		RETURNING %s`,
		t.table, strings.Join(clauses, ", "), len(args)-1, len(args), t.columns)

	return t.one(t.q.QueryRow(ctx, query, args...))
}

func (t ownedTable[T]) delete(ctx context.Context, id, ownerID int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, t.table)
	res, err := t.q.Exec(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t ownedTable[T]) one(row scanner) (*T, error) {
	item, err := t.scan(row)
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// placeholders returns "$from, $from+1, ..." for n values.
func placeholders(from, n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(marks, ", ")
}

// uniqueIDs drops duplicates and keeps first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
