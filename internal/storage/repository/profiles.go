package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tapfolio/entitlement-service/internal/models"
)

// GetVisualMirror reads the cached visual-entitlement flags from the user
// row. A missing row reads as all-false so a fresh account converges on the
// first reconciliation.
func (s *Storage) GetVisualMirror(ctx context.Context, userUID string) (models.VisualMirror, error) {
	const op = "storage.GetVisualMirror"
	select {
	case <-ctx.Done():
		return models.VisualMirror{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT mirror_gold_ring, mirror_royal_texture, mirror_custom_branding
			  FROM users
			  WHERE uid = $1`
	var m models.VisualMirror
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&m.GoldRing, &m.RoyalTexture, &m.CustomBranding)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VisualMirror{}, nil
	}
	if err != nil {
		return models.VisualMirror{}, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// UpdateVisualMirror writes the three mirror fields in a single statement.
// This is the only profile write this service performs.
func (s *Storage) UpdateVisualMirror(ctx context.Context, userUID string, m models.VisualMirror) (int, error) {
	const op = "storage.UpdateVisualMirror"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET mirror_gold_ring = $1, mirror_royal_texture = $2, mirror_custom_branding = $3
			  WHERE uid = $4`
	result, err := s.DB.ExecContext(ctx, query, m.GoldRing, m.RoyalTexture, m.CustomBranding, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
