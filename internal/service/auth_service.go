// internal/service/auth_service.go
package service

import (
	"context"
	"time"

	"github.com/unclebandit/campaignhub-backend/internal/auth"
	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/queue"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
	"github.com/unclebandit/campaignhub-backend/internal/validate"
)

// TokenIssuer is the part of auth.JWTManager the service needs.
type TokenIssuer interface {
	GenerateToken(userID int64, email string) (string, time.Time, error)
}

type AuthService struct {
	UserRepo repository.UserRepositoryInterface
	Tokens   TokenIssuer
	Events   queue.Publisher
}

// UserSummary is the user block returned next to a token.
type UserSummary struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type AuthResult struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in validate.RegisterInput) (*AuthResult, error) {
	if err := validate.Register(in); err != nil {
		return nil, err
	}

	exists, err := s.UserRepo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, appErrors.ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	// The unique constraint still wins if two registrations race past the
	// check above; Create maps that to ErrEmailTaken.
	user, err := s.UserRepo.Create(ctx, model.CreateUserParams{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, queue.NewEvent(queue.EventUserRegistered, user.ID, user.ID, nil))
	return result, nil
}

// Login answers both an unknown email and a wrong password with the same
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := validate.Login(email, password); err != nil {
		return nil, err
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, appErrors.ErrInvalidCredentials
	}
	return s.issue(user)
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, appErrors.NewUserNotFound(userID)
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, _, err := s.Tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token: token,
		User: UserSummary{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	}, nil
}
