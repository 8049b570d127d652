// internal/auth/jwt.go
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
)

// JWTManager signs and validates the bearer tokens handed out on register
// and login.
type JWTManager struct {
	secretKey []byte
	duration  time.Duration
	now       func() time.Time
}

// Claims binds a token to a user id and email.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func NewJWTManager(secretKey string, duration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secretKey),
		duration:  duration,
		now:       time.Now,
	}
}

// GenerateToken issues a signed HS256 token for the user.
func (m *JWTManager) GenerateToken(userID int64, email string) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.duration)

	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken parses a token and returns its identity. Any failure (bad
// signature, wrong algorithm, expiry, garbage) is ErrInvalidToken.
func (m *JWTManager) VerifyToken(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Identity{}, appErrors.ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return Identity{}, appErrors.ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
