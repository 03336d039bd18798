// Package auth implements account registration, login and session token
// validation.
package auth

import (
	"context"
	"errors"

	"github.com/tapfolio/entitlement-service/internal/lib/jwt"
	"github.com/tapfolio/entitlement-service/internal/lib/password"
	"github.com/tapfolio/entitlement-service/internal/models"
)

// ErrBanned is returned when a banned account attempts to sign in.
var ErrBanned = errors.New("account is suspended")

// UserRepository defines account and claim lookups in storage.
type UserRepository interface {
	// RegisterUser stores a new account and returns its UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByUsername returns an account by username.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetClaims reads the authoritative claim record for a user.
	GetClaims(ctx context.Context, userUID string) (models.Claims, error)
}

// Service handles registration, login and token validation.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewService builds the auth service.
func NewService(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register creates a new account with a hashed password and the default
// user role.
func (s *Service) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login verifies credentials and issues a session token. The token embeds
// the authoritative claim set read from the claim store at issue time; it is
// the session's cached claims until a forced refresh replaces it. Banned
// accounts are refused outright.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token string, user *models.User, err error) {
	user, err = s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, errors.New("invalid credentials")
	}
	if user.IsBanned {
		return "", nil, ErrBanned
	}

	claims, err := s.users.GetClaims(ctx, user.UID)
	if err != nil {
		return "", nil, err
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.UID, user.Role, claims)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ValidateToken parses a session token and returns its claims.
func (s *Service) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}
