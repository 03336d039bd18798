package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tapfolio/entitlement-service/internal/models"
)

// Usage counters use atomic in-database deltas rather than read-modify-write,
// since concurrent saves and deletes from several sessions are expected.

// IncrementContactCount adds one to the lifetime contacts counter.
func (s *Storage) IncrementContactCount(ctx context.Context, userUID string) error {
	const op = "storage.IncrementContactCount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO usage_contacts (user_uid, count)
			  VALUES ($1, 1)
			  ON CONFLICT (user_uid) DO UPDATE SET count = usage_contacts.count + 1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DecrementContactCount subtracts one from the lifetime contacts counter,
// clamped at zero so racing double-deletes cannot drive it negative.
func (s *Storage) DecrementContactCount(ctx context.Context, userUID string) error {
	const op = "storage.DecrementContactCount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE usage_contacts
			  SET count = GREATEST(count - 1, 0)
			  WHERE user_uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IncrementExportCount adds one to the counter keyed by the given calendar
// month. A new month key starts a fresh row at one; earlier months are left
// untouched.
func (s *Storage) IncrementExportCount(ctx context.Context, userUID, monthKey string) error {
	const op = "storage.IncrementExportCount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO usage_exports (user_uid, month_key, count)
			  VALUES ($1, $2, 1)
			  ON CONFLICT (user_uid, month_key) DO UPDATE SET count = usage_exports.count + 1`
	if _, err := s.DB.ExecContext(ctx, query, userUID, monthKey); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUsageStats reads both counters for the given month key. Missing rows
// read as zero.
func (s *Storage) GetUsageStats(ctx context.Context, userUID, monthKey string) (models.UsageStats, error) {
	const op = "storage.GetUsageStats"
	stats := models.UsageStats{MonthKey: monthKey}
	select {
	case <-ctx.Done():
		return stats, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.DB.QueryRowContext(ctx,
		`SELECT count FROM usage_contacts WHERE user_uid = $1`, userUID).
		Scan(&stats.ContactsCount)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	err = s.DB.QueryRowContext(ctx,
		`SELECT count FROM usage_exports WHERE user_uid = $1 AND month_key = $2`, userUID, monthKey).
		Scan(&stats.ExportsCount)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return stats, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
