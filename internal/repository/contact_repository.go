// internal/repository/contact_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/unclebandit/campaignhub-backend/internal/db"
	"github.com/unclebandit/campaignhub-backend/internal/model"
)

type ContactRepositoryInterface interface {
	List(ctx context.Context, ownerID int64) ([]model.Contact, error)
	Get(ctx context.Context, id, ownerID int64) (*model.Contact, error)
	Create(ctx context.Context, ownerID int64, params model.CreateContactParams) (*model.Contact, error)
	Update(ctx context.Context, id, ownerID int64, params model.UpdateContactParams) (*model.Contact, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
	VerifyOwnership(ctx context.Context, ids []int64, ownerID int64) (bool, error)
}

type ContactRepository struct {
	DB  *db.DB
	Now func() time.Time
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)

const contactColumns = `id, user_id, first_name, last_name, email, phone, company, notes, created_at, updated_at`

func scanContact(row scanner) (*model.Contact, error) {
	c := &model.Contact{}
	err := row.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email,
		&c.Phone, &c.Company, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ContactRepository) table() ownedTable[model.Contact] {
	return ownedTable[model.Contact]{q: r.DB, table: "contacts", columns: contactColumns, scan: scanContact}
}

func (r *ContactRepository) List(ctx context.Context, ownerID int64) ([]model.Contact, error) {
	return r.table().list(ctx, ownerID)
}

// Get returns (nil, nil) when the contact is missing or owned by someone else.
func (r *ContactRepository) Get(ctx context.Context, id, ownerID int64) (*model.Contact, error) {
	return r.table().get(ctx, id, ownerID)
}

func (r *ContactRepository) Create(ctx context.Context, ownerID int64, params model.CreateContactParams) (*model.Contact, error) {
	now := clock(r.Now)
	return r.table().insert(ctx, []assignment{
		{"user_id", ownerID},
		{"first_name", params.FirstName},
		{"last_name", params.LastName},
		{"email", params.Email},
		{"phone", nullable(params.Phone)},
		{"company", nullable(params.Company)},
		{"notes", nullable(params.Notes)},
		{"created_at", now},
		{"updated_at", now},
	})
}

// Update sets only the fields present in params and always bumps updated_at.
func (r *ContactRepository) Update(ctx context.Context, id, ownerID int64, params model.UpdateContactParams) (*model.Contact, error) {
	var sets []assignment
	sets = appendSet(sets, "first_name", params.FirstName)
	sets = appendSet(sets, "last_name", params.LastName)
	sets = appendSet(sets, "email", params.Email)
	sets = appendNullable(sets, "phone", params.Phone)
	sets = appendNullable(sets, "company", params.Company)
	sets = appendNullable(sets, "notes", params.Notes)
	sets = append(sets, assignment{"updated_at", clock(r.Now)})

	return r.table().update(ctx, id, ownerID, sets)
}

func (r *ContactRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	return r.table().delete(ctx, id, ownerID)
}

// ownershipBatch caps the ids bound into one IN list, well below the
// parameter limits of both drivers.
const ownershipBatch = 500

// VerifyOwnership reports whether every distinct id belongs to ownerID. Large
// id lists are counted in batches.
func (r *ContactRepository) VerifyOwnership(ctx context.Context, ids []int64, ownerID int64) (bool, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return false, nil
	}

	for start := 0; start < len(ids); start += ownershipBatch {
		batch := ids[start:min(start+ownershipBatch, len(ids))]
		n, err := r.countOwned(ctx, batch, ownerID)
		if err != nil {
			return false, err
		}
		if n != len(batch) {
			return false, nil
		}
	}
	return true, nil
}

func (r *ContactRepository) countOwned(ctx context.Context, ids []int64, ownerID int64) (int, error) {
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT id)
		FROM   contacts
		WHERE  user_id = $1 AND id IN (%s)`, placeholders(2, len(ids)))

	var n int
	if err := r.DB.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func appendSet[T any](sets []assignment, column string, o model.Optional[T]) []assignment {
	if !o.IsSet() {
		return sets
	}
	return append(sets, assignment{column, o.Value})
}

// appendNullable is appendSet for optional text columns: an empty string is
// written as NULL, the same as on create.
func appendNullable(sets []assignment, column string, o model.Optional[string]) []assignment {
	if !o.IsSet() {
		return sets
	}
	return append(sets, assignment{column, nullable(&o.Value)})
}

// nullable stores nil and empty strings as NULL.
func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
