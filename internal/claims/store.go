// Package claims implements the session-facing view of the external claim
// store. Cached claims live inside the session token; a forced refresh reads
// the authoritative claim record and mints a fresh token around it.
package claims

import (
	"context"
	"fmt"

	"github.com/tapfolio/entitlement-service/internal/lib/jwt"
	"github.com/tapfolio/entitlement-service/internal/models"
)

// Repository reads the authoritative claim records.
type Repository interface {
	GetClaims(ctx context.Context, userUID string) (models.Claims, error)
}

// Store resolves claims for a session.
type Store struct {
	repo  Repository
	maker jwt.Maker
}

// NewStore builds a claim store over the claim repository and token maker.
func NewStore(repo Repository, maker jwt.Maker) *Store {
	return &Store{
		repo:  repo,
		maker: maker,
	}
}

// CachedClaims reads the claim set embedded in the session token without any
// round-trip. Used at sign-in to avoid refresh rate limits.
func (s *Store) CachedClaims(tokenStr string) (models.Claims, error) {
	const op = "claims.CachedClaims"
	parsed, err := s.maker.ParseToken(tokenStr)
	if err != nil {
		return models.Claims{}, fmt.Errorf("%s: %w", op, err)
	}
	return parsed.Authority(), nil
}

// ForceRefresh reads the authoritative claim record and issues a replacement
// token carrying it. The returned claims are what the store actually
// reports; callers must adopt them as-is, never the locally expected value.
func (s *Store) ForceRefresh(ctx context.Context, user *models.User) (models.Claims, string, error) {
	const op = "claims.ForceRefresh"
	fresh, err := s.repo.GetClaims(ctx, user.UID)
	if err != nil {
		return models.Claims{}, "", fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.maker.GenerateToken(user.Username, user.UID, user.Role, fresh)
	if err != nil {
		return models.Claims{}, "", fmt.Errorf("%s: %w", op, err)
	}
	return fresh, token, nil
}
