package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tapfolio/entitlement-service/internal/lib/monthkey"
	"github.com/tapfolio/entitlement-service/internal/lib/sl"
	"github.com/tapfolio/entitlement-service/internal/metrics"
	"github.com/tapfolio/entitlement-service/internal/models"
)

// CatalogRepository reads the plan catalog.
type CatalogRepository interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// OrderRepository reads the order ledger.
type OrderRepository interface {
	ListOrdersByUser(ctx context.Context, userUID string) ([]models.Order, error)
}

// UsageRepository reads the usage counters.
type UsageRepository interface {
	GetUsageStats(ctx context.Context, userUID, monthKey string) (models.UsageStats, error)
}

// ProfileRepository reads and corrects the visual mirror on the profile.
type ProfileRepository interface {
	GetVisualMirror(ctx context.Context, userUID string) (models.VisualMirror, error)
	UpdateVisualMirror(ctx context.Context, userUID string, m models.VisualMirror) (int, error)
}

// Cache caches the plan catalog between computations.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

const (
	catalogCacheKey = "plans:catalog"
	catalogCacheTTL = 5 * time.Minute
	reconcileBudget = 10 * time.Second
)

// Service orchestrates the entitlement pipeline: fetch catalog and ledger,
// run the pure aggregation, attach usage, and schedule mirror reconciliation.
type Service struct {
	plans    CatalogRepository
	orders   OrderRepository
	usage    UsageRepository
	profiles ProfileRepository
	cache    Cache
	log      *slog.Logger
}

// NewService builds the entitlement service over its repositories.
func NewService(plans CatalogRepository, orders OrderRepository, usage UsageRepository,
	profiles ProfileRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		plans:    plans,
		orders:   orders,
		usage:    usage,
		profiles: profiles,
		cache:    cache,
		log:      log,
	}
}

// Catalog returns the plan catalog, from cache when fresh. A catalog fetch
// failure is fatal for the computation cycle: without it there is no
// baseline to aggregate from.
func (s *Service) Catalog(ctx context.Context) ([]models.Plan, error) {
	var catalog []models.Plan
	found, err := s.cache.Get(catalogCacheKey, &catalog)
	if err != nil {
		s.log.Warn("catalog cache read failed", sl.Err(err))
	}
	if found && len(catalog) > 0 {
		return catalog, nil
	}

	catalog, err = s.plans.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch plan catalog: %w", err)
	}
	if err := s.cache.Set(catalogCacheKey, catalog, catalogCacheTTL); err != nil {
		s.log.Warn("failed to cache plan catalog", sl.Err(err))
	}
	return catalog, nil
}

// InvalidateCatalog drops the cached catalog after an admin edit so the next
// computation sees the fresh version.
func (s *Service) InvalidateCatalog() {
	if err := s.cache.Invalidate(catalogCacheKey); err != nil {
		s.log.Warn("failed to invalidate catalog cache", sl.Err(err))
	}
}

// Compute assembles the entitlement profile for a user. It is read-only: the
// visual mirror is not touched. Usage counter failures degrade to zeroes;
// only a catalog failure aborts the computation.
func (s *Service) Compute(ctx context.Context, userUID string) (*models.EntitlementProfile, error) {
	const op = "entitlement.Compute"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", userUID))

	catalog, err := s.Catalog(ctx)
	if err != nil {
		metrics.AggregationRuns.WithLabelValues("catalog_error").Inc()
		return nil, err
	}

	orders, err := s.orders.ListOrdersByUser(ctx, userUID)
	if err != nil {
		metrics.AggregationRuns.WithLabelValues("ledger_error").Inc()
		return nil, fmt.Errorf("fetch order ledger: %w", err)
	}

	summary, dangling := Aggregate(catalog, orders)
	for _, d := range dangling {
		metrics.DanglingPlanSkips.Inc()
		log.Warn("order references unknown plan, skipping",
			slog.String("order_id", d.OrderID), slog.String("plan_id", d.PlanID))
	}

	usage, err := s.usage.GetUsageStats(ctx, userUID, monthkey.Current())
	if err != nil {
		// Counters are decoration on the profile; missing or failed reads
		// fall back to zero.
		log.Warn("usage stats read failed, treating as zero", sl.Err(err))
		usage = models.UsageStats{MonthKey: monthkey.Current()}
	}

	metrics.AggregationRuns.WithLabelValues("ok").Inc()
	return &models.EntitlementProfile{
		Limits:          summary.Limits,
		Features:        summary.Features,
		Visuals:         summary.Visuals,
		IsFinite:        summary.IsFinite,
		ActivePlanNames: summary.ActivePlanNames,
		Usage:           usage,
		ComputedAt:      time.Now().UTC(),
	}, nil
}

// ComputeAndReconcile computes the profile and schedules a mirror
// reconciliation off the critical path. The returned profile never waits for
// the reconciliation write; its failure is logged, not surfaced.
func (s *Service) ComputeAndReconcile(ctx context.Context, userUID string) (*models.EntitlementProfile, error) {
	profile, err := s.Compute(ctx, userUID)
	if err != nil {
		return nil, err
	}

	mirror := profile.Mirror()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileBudget)
		defer cancel()
		if err := s.Reconcile(ctx, userUID, mirror); err != nil {
			s.log.Warn("visual mirror reconciliation failed",
				slog.String("user_uid", userUID), sl.Err(err))
		}
	}()

	return profile, nil
}

// Reconcile compares the freshly computed visual flags against the cached
// copy on the profile and writes a single correction when they drift.
// Unchanged inputs produce zero writes.
func (s *Service) Reconcile(ctx context.Context, userUID string, computed models.VisualMirror) error {
	const op = "entitlement.Reconcile"

	current, err := s.profiles.GetVisualMirror(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if current == computed {
		return nil
	}

	if _, err := s.profiles.UpdateVisualMirror(ctx, userUID, computed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.ReconcilerWrites.Inc()
	s.log.Info("visual mirror drift corrected",
		slog.String("user_uid", userUID),
		slog.Bool("gold_ring", computed.GoldRing),
		slog.Bool("royal_texture", computed.RoyalTexture),
		slog.Bool("custom_branding", computed.CustomBranding))
	return nil
}
