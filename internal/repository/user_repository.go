// internal/repository/user_repository.go
package repository

import (
	"context"
	"time"

	"github.com/unclebandit/campaignhub-backend/internal/db"
	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
)

type UserRepositoryInterface interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

type UserRepository struct {
	DB  *db.DB
	Now func() time.Time
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

const (
	sqlUserExistsByEmail = `SELECT COUNT(*) FROM users WHERE email = $1`

	sqlInsertUser = `
		INSERT INTO users (email, password_hash, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, first_name, last_name, created_at, updated_at`

	sqlFindUserByEmail = `
		SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		FROM   users
		WHERE  email = $1`

	sqlFindUserByID = `
		SELECT id, email, first_name, last_name, created_at, updated_at
		FROM   users
		WHERE  id = $1`
)

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	if err := r.DB.QueryRow(ctx, sqlUserExistsByEmail, email).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a user. A duplicate email is ErrEmailTaken; the unique
// constraint decides, not the caller's pre-check.
func (r *UserRepository) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	now := clock(r.Now)
	u := &model.User{}
	err := r.DB.QueryRow(ctx, sqlInsertUser,
		params.Email, params.PasswordHash, params.FirstName, params.LastName, now, now,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if db.IsDuplicateKey(err) {
		return nil, appErrors.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail includes the password hash. Returns (nil, nil) when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.DB.QueryRow(ctx, sqlFindUserByEmail, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := r.DB.QueryRow(ctx, sqlFindUserByID, id).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// clock returns now in UTC, using fn when set.
func clock(fn func() time.Time) time.Time {
	if fn != nil {
		return fn().UTC()
	}
	return time.Now().UTC()
}
