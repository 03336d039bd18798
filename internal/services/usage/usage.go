// Package usage manages the two per-user usage counters: the lifetime
// contacts counter and the calendar-month export counter.
package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/tapfolio/entitlement-service/internal/lib/monthkey"
	"github.com/tapfolio/entitlement-service/internal/lib/sl"
	"github.com/tapfolio/entitlement-service/internal/models"
)

// Repository defines the atomic counter operations in storage. All mutations
// are increment-by-delta at the database, never read-modify-write.
type Repository interface {
	IncrementContactCount(ctx context.Context, userUID string) error
	DecrementContactCount(ctx context.Context, userUID string) error
	IncrementExportCount(ctx context.Context, userUID, monthKey string) error
	GetUsageStats(ctx context.Context, userUID, monthKey string) (models.UsageStats, error)
}

// Service exposes the counters to handlers and to the entitlement pipeline.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewService builds the usage service. The clock is injectable for tests.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// IncrementContactCount records one saved contact.
func (s *Service) IncrementContactCount(ctx context.Context, userUID string) error {
	return s.repo.IncrementContactCount(ctx, userUID)
}

// DecrementContactCount records one deleted contact. The storage layer
// clamps at zero, so racing double-deletes cannot drive the counter
// negative.
func (s *Service) DecrementContactCount(ctx context.Context, userUID string) error {
	return s.repo.DecrementContactCount(ctx, userUID)
}

// IncrementExportCount records one export against the current calendar
// month. A new month starts from zero because the storage key changes.
func (s *Service) IncrementExportCount(ctx context.Context, userUID string) error {
	return s.repo.IncrementExportCount(ctx, userUID, monthkey.For(s.now()))
}

// GetUsageStats reads both counters for the current month. A failed read is
// reported as zeroes rather than an error: counters decorate the entitlement
// profile and must never block it.
func (s *Service) GetUsageStats(ctx context.Context, userUID string) (models.UsageStats, error) {
	key := monthkey.For(s.now())
	stats, err := s.repo.GetUsageStats(ctx, userUID, key)
	if err != nil {
		s.log.Warn("usage stats read failed", slog.String("user_uid", userUID), sl.Err(err))
		return models.UsageStats{MonthKey: key}, nil
	}
	return stats, nil
}
