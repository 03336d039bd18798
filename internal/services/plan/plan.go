// Package plan implements admin management of the plan catalog.
package plan

import (
	"context"
	"log/slog"

	"github.com/tapfolio/entitlement-service/internal/models"
)

// Repository defines the catalog operations in storage.
type Repository interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	UpsertPlan(ctx context.Context, plan models.Plan) error
	DeactivatePlan(ctx context.Context, id string) (int, error)
}

// CatalogInvalidator drops the cached catalog after an edit. Implemented by
// the entitlement service.
type CatalogInvalidator interface {
	InvalidateCatalog()
}

// Service manages catalog reads and admin edits.
type Service struct {
	repo         Repository
	entitlements CatalogInvalidator
	log          *slog.Logger
}

// NewService builds the plan service.
func NewService(repo Repository, entitlements CatalogInvalidator, log *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		entitlements: entitlements,
		log:          log,
	}
}

// List returns the full catalog.
func (s *Service) List(ctx context.Context) ([]models.Plan, error) {
	return s.repo.ListPlans(ctx)
}

// Get returns one plan by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Plan, error) {
	return s.repo.GetPlan(ctx, id)
}

// Upsert creates or replaces a catalog plan and drops the cached catalog so
// running sessions pick up the edit on their next computation.
func (s *Service) Upsert(ctx context.Context, req models.DummyPlan) error {
	if err := s.repo.UpsertPlan(ctx, req.ToPlan()); err != nil {
		return err
	}
	s.entitlements.InvalidateCatalog()
	s.log.Info("plan upserted", slog.String("plan_id", req.ID))
	return nil
}

// Deactivate closes a plan for new purchases. Existing orders keep
// contributing entitlements.
func (s *Service) Deactivate(ctx context.Context, id string) (int, error) {
	count, err := s.repo.DeactivatePlan(ctx, id)
	if err != nil {
		return 0, err
	}
	s.entitlements.InvalidateCatalog()
	s.log.Info("plan deactivated", slog.String("plan_id", id), slog.Int("rows", count))
	return count, nil
}
