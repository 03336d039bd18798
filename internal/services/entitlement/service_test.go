package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tapfolio/entitlement-service/internal/lib/monthkey"
	"github.com/tapfolio/entitlement-service/internal/models"
)

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListPlans(ctx context.Context) ([]models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Plan), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) ListOrdersByUser(ctx context.Context, userUID string) ([]models.Order, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockUsageRepository struct {
	mock.Mock
}

func (m *MockUsageRepository) GetUsageStats(ctx context.Context, userUID, monthKey string) (models.UsageStats, error) {
	args := m.Called(ctx, userUID, monthKey)
	return args.Get(0).(models.UsageStats), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetVisualMirror(ctx context.Context, userUID string) (models.VisualMirror, error) {
	args := m.Called(ctx, userUID)
	return args.Get(0).(models.VisualMirror), args.Error(1)
}

func (m *MockProfileRepository) UpdateVisualMirror(ctx context.Context, userUID string, mirror models.VisualMirror) (int, error) {
	args := m.Called(ctx, userUID, mirror)
	return args.Int(0), args.Error(1)
}

// fakeCache is an in-memory stand-in for the redis catalog cache.
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string, result any) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (c *fakeCache) Set(key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Invalidate(key string) error {
	delete(c.data, key)
	return nil
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_Compute_OK(t *testing.T) {
	plans := new(MockCatalogRepository)
	orders := new(MockOrderRepository)
	usage := new(MockUsageRepository)
	profiles := new(MockProfileRepository)
	cache := newFakeCache()

	plans.On("ListPlans", mock.Anything).Return([]models.Plan{freePlan(), plusPlan()}, nil).Once()
	orders.On("ListOrdersByUser", mock.Anything, "u1").
		Return([]models.Order{{ID: "o1", UserUID: "u1", PlanID: "plus", Status: models.StatusDelivered}}, nil).Once()
	usage.On("GetUsageStats", mock.Anything, "u1", monthkey.Current()).
		Return(models.UsageStats{ContactsCount: 12, ExportsCount: 3, MonthKey: monthkey.Current()}, nil).Once()

	svc := NewService(plans, orders, usage, profiles, cache, newNoopLogger())

	profile, err := svc.Compute(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 50+500, profile.Limits.Contacts)
	assert.Equal(t, 12, profile.Usage.ContactsCount)
	assert.Equal(t, []string{"Free", "Plus"}, profile.ActivePlanNames)
	assert.False(t, profile.ComputedAt.IsZero())

	// The catalog got cached for the next computation.
	var cached []models.Plan
	found, err := cache.Get("plans:catalog", &cached)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, cached, 2)

	plans.AssertExpectations(t)
	orders.AssertExpectations(t)
	usage.AssertExpectations(t)
}

func TestService_Compute_CatalogCacheHit(t *testing.T) {
	plans := new(MockCatalogRepository)
	orders := new(MockOrderRepository)
	usage := new(MockUsageRepository)
	profiles := new(MockProfileRepository)
	cache := newFakeCache()
	require.NoError(t, cache.Set("plans:catalog", []models.Plan{freePlan()}, time.Minute))

	orders.On("ListOrdersByUser", mock.Anything, "u1").Return([]models.Order{}, nil).Once()
	usage.On("GetUsageStats", mock.Anything, "u1", monthkey.Current()).
		Return(models.UsageStats{MonthKey: monthkey.Current()}, nil).Once()

	svc := NewService(plans, orders, usage, profiles, cache, newNoopLogger())

	profile, err := svc.Compute(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 50, profile.Limits.Contacts)
	// ListPlans must not be hit on a cache hit.
	plans.AssertNotCalled(t, "ListPlans", mock.Anything)
}

func TestService_Compute_CatalogErrorIsFatal(t *testing.T) {
	plans := new(MockCatalogRepository)
	orders := new(MockOrderRepository)
	usage := new(MockUsageRepository)
	profiles := new(MockProfileRepository)

	plans.On("ListPlans", mock.Anything).Return(nil, errors.New("db down")).Once()

	svc := NewService(plans, orders, usage, profiles, newFakeCache(), newNoopLogger())

	profile, err := svc.Compute(context.Background(), "u1")

	require.Error(t, err)
	assert.Nil(t, profile)
	orders.AssertNotCalled(t, "ListOrdersByUser", mock.Anything, mock.Anything)
}

func TestService_Compute_UsageErrorDegradesToZero(t *testing.T) {
	plans := new(MockCatalogRepository)
	orders := new(MockOrderRepository)
	usage := new(MockUsageRepository)
	profiles := new(MockProfileRepository)

	plans.On("ListPlans", mock.Anything).Return([]models.Plan{freePlan()}, nil).Once()
	orders.On("ListOrdersByUser", mock.Anything, "u1").Return([]models.Order{}, nil).Once()
	usage.On("GetUsageStats", mock.Anything, "u1", monthkey.Current()).
		Return(models.UsageStats{}, errors.New("counters unavailable")).Once()

	svc := NewService(plans, orders, usage, profiles, newFakeCache(), newNoopLogger())

	profile, err := svc.Compute(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 0, profile.Usage.ContactsCount)
	assert.Equal(t, 0, profile.Usage.ExportsCount)
	assert.Equal(t, monthkey.Current(), profile.Usage.MonthKey)
}

func TestService_Reconcile_WritesOnlyOnDrift(t *testing.T) {
	computed := models.VisualMirror{GoldRing: true, RoyalTexture: false, CustomBranding: true}

	tests := []struct {
		name        string
		stored      models.VisualMirror
		expectWrite bool
	}{
		{
			name:        "drift corrected with a single write",
			stored:      models.VisualMirror{},
			expectWrite: true,
		},
		{
			name:        "identical mirror produces zero writes",
			stored:      computed,
			expectWrite: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := new(MockProfileRepository)
			profiles.On("GetVisualMirror", mock.Anything, "u1").Return(tt.stored, nil).Once()
			if tt.expectWrite {
				profiles.On("UpdateVisualMirror", mock.Anything, "u1", computed).Return(1, nil).Once()
			}

			svc := NewService(new(MockCatalogRepository), new(MockOrderRepository),
				new(MockUsageRepository), profiles, newFakeCache(), newNoopLogger())

			err := svc.Reconcile(context.Background(), "u1", computed)

			require.NoError(t, err)
			profiles.AssertExpectations(t)
			if !tt.expectWrite {
				profiles.AssertNotCalled(t, "UpdateVisualMirror", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestService_Reconcile_Idempotent(t *testing.T) {
	computed := models.VisualMirror{GoldRing: true}

	profiles := new(MockProfileRepository)
	// First pass sees drift and corrects it, second pass sees the corrected
	// value and writes nothing.
	profiles.On("GetVisualMirror", mock.Anything, "u1").Return(models.VisualMirror{}, nil).Once()
	profiles.On("UpdateVisualMirror", mock.Anything, "u1", computed).Return(1, nil).Once()
	profiles.On("GetVisualMirror", mock.Anything, "u1").Return(computed, nil).Once()

	svc := NewService(new(MockCatalogRepository), new(MockOrderRepository),
		new(MockUsageRepository), profiles, newFakeCache(), newNoopLogger())

	require.NoError(t, svc.Reconcile(context.Background(), "u1", computed))
	require.NoError(t, svc.Reconcile(context.Background(), "u1", computed))

	profiles.AssertExpectations(t)
	profiles.AssertNumberOfCalls(t, "UpdateVisualMirror", 1)
}

func TestService_Reconcile_ReadErrorSurfaced(t *testing.T) {
	profiles := new(MockProfileRepository)
	profiles.On("GetVisualMirror", mock.Anything, "u1").
		Return(models.VisualMirror{}, errors.New("profile store down")).Once()

	svc := NewService(new(MockCatalogRepository), new(MockOrderRepository),
		new(MockUsageRepository), profiles, newFakeCache(), newNoopLogger())

	err := svc.Reconcile(context.Background(), "u1", models.VisualMirror{GoldRing: true})

	require.Error(t, err)
	profiles.AssertNotCalled(t, "UpdateVisualMirror", mock.Anything, mock.Anything, mock.Anything)
}
