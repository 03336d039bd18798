package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tapfolio/entitlement-service/internal/models"
)

// ErrUserNotFound is returned when no account matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// RegisterUser stores a new account and returns its UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, password_hash, role, legacy_admin, is_banned)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.Admin,
		user.IsBanned).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.Admin, &u.IsBanned, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByUsername returns an account by username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, legacy_admin, is_banned, created_at
			  FROM users
			  WHERE username = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, username), op)
}

// GetUser returns an account by UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, legacy_admin, is_banned, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

// GetClaims reads the authoritative claim record for a user. The claim table
// is written by the backend claim-assignment workflow; this service only ever
// reads it, and only inside a forced refresh.
func (s *Storage) GetClaims(ctx context.Context, userUID string) (models.Claims, error) {
	const op = "storage.GetClaims"
	select {
	case <-ctx.Done():
		return models.Claims{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT admin, super_admin
			  FROM user_claims
			  WHERE user_uid = $1`
	var c models.Claims
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&c.Admin, &c.SuperAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		// No claim record means no granted authority.
		return models.Claims{}, nil
	}
	if err != nil {
		return models.Claims{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}
