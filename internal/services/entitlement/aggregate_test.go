package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapfolio/entitlement-service/internal/models"
)

func freePlan() models.Plan {
	return models.Plan{
		ID:     models.FreePlanID,
		Name:   "Free",
		Active: true,
		Limits: models.Limits{Links: 5, Contacts: 50, Exports: 5},
	}
}

func plusPlan() models.Plan {
	return models.Plan{
		ID:     "plus",
		Name:   "Plus",
		Price:  990,
		Tier:   1,
		Active: true,
		Limits: models.Limits{
			Links:          10,
			Contacts:       500,
			Exports:        20,
			PortfolioItems: 10,
		},
		Features: models.Features{Portfolio: true},
		Visuals:  models.Visuals{GoldRing: true},
	}
}

func ultraPlan() models.Plan {
	return models.Plan{
		ID:     "ultra",
		Name:   "Ultra",
		Price:  4990,
		Tier:   2,
		Active: true,
		Limits: models.Limits{
			Links:               50,
			Contacts:            1000000,
			Exports:             1000000,
			PortfolioItems:      100,
			PrivateContentItems: 100,
		},
		Features: models.Features{
			Portfolio:      true,
			PrivateContent: true,
			CustomBranding: true,
			Wallpaper:      true,
		},
		Visuals: models.Visuals{GoldRing: true, RoyalTexture: true},
	}
}

func TestAggregate_BaselineOnly(t *testing.T) {
	sum, dangling := Aggregate([]models.Plan{freePlan()}, nil)

	require.Empty(t, dangling)
	assert.Equal(t, models.Limits{Links: 5, Contacts: 50, Exports: 5}, sum.Limits)
	assert.Equal(t, []string{"Free"}, sum.ActivePlanNames)
	assert.True(t, sum.IsFinite.Contacts)
	assert.True(t, sum.IsFinite.Exports)
	assert.False(t, sum.Features.Portfolio)
	assert.False(t, sum.Visuals.GoldRing)
}

func TestAggregate_MissingBaselineFallsBack(t *testing.T) {
	// Catalog without the free plan still yields the hardcoded baseline.
	sum, dangling := Aggregate([]models.Plan{plusPlan()}, nil)

	require.Empty(t, dangling)
	assert.Equal(t, models.DefaultBaseline().Limits, sum.Limits)
	assert.Equal(t, []string{"Free"}, sum.ActivePlanNames)
}

func TestAggregate_LimitsStackAdditively(t *testing.T) {
	catalog := []models.Plan{freePlan(), plusPlan()}
	orders := []models.Order{
		{ID: "o1", UserUID: "u1", PlanID: "plus", Status: models.StatusDelivered},
		{ID: "o2", UserUID: "u1", PlanID: "plus", Status: models.StatusShipped},
	}

	sum, dangling := Aggregate(catalog, orders)

	require.Empty(t, dangling)
	assert.Equal(t, models.Limits{
		Links:          5 + 10 + 10,
		Contacts:       50 + 500 + 500,
		Exports:        5 + 20 + 20,
		PortfolioItems: 20,
	}, sum.Limits)
	// Same plan twice stacks limits but lists the name once.
	assert.Equal(t, []string{"Free", "Plus"}, sum.ActivePlanNames)
}

func TestAggregate_VoidedStatusesContributeNothing(t *testing.T) {
	tests := []struct {
		status      models.OrderStatus
		contributes bool
	}{
		{models.StatusOrderReceived, true},
		{models.StatusProcessing, true},
		{models.StatusShipped, true},
		{models.StatusDelivered, true},
		{models.StatusCancelled, false},
		{models.StatusRefunded, false},
		{models.StatusPaymentFailed, false},
		{models.StatusPendingVerification, false},
	}

	catalog := []models.Plan{freePlan(), plusPlan()}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			orders := []models.Order{{ID: "o1", UserUID: "u1", PlanID: "plus", Status: tt.status}}
			sum, _ := Aggregate(catalog, orders)

			if tt.contributes {
				assert.Equal(t, 50+500, sum.Limits.Contacts)
			} else {
				assert.Equal(t, 50, sum.Limits.Contacts)
			}
		})
	}
}

func TestAggregate_FlagsMergeWithOr(t *testing.T) {
	catalog := []models.Plan{freePlan(), plusPlan(), ultraPlan()}
	orders := []models.Order{
		{ID: "o1", UserUID: "u1", PlanID: "plus", Status: models.StatusDelivered},
		{ID: "o2", UserUID: "u1", PlanID: "ultra", Status: models.StatusDelivered},
		// A cancelled ultra order must not re-grant anything on its own.
		{ID: "o3", UserUID: "u1", PlanID: "ultra", Status: models.StatusCancelled},
	}

	sum, dangling := Aggregate(catalog, orders)

	require.Empty(t, dangling)
	assert.True(t, sum.Features.Portfolio)
	assert.True(t, sum.Features.PrivateContent)
	assert.True(t, sum.Features.CustomBranding)
	assert.True(t, sum.Features.Wallpaper)
	assert.True(t, sum.Visuals.GoldRing)
	assert.True(t, sum.Visuals.RoyalTexture)
}

func TestAggregate_UnlimitedSentinel(t *testing.T) {
	atThreshold := models.Plan{
		ID: "edge", Name: "Edge", Active: true,
		Limits: models.Limits{Contacts: models.UnlimitedThreshold - 50},
	}
	overThreshold := models.Plan{
		ID: "over", Name: "Over", Active: true,
		Limits: models.Limits{Contacts: models.UnlimitedThreshold - 49},
	}

	tests := []struct {
		name   string
		planID string
		finite bool
		total  int
	}{
		{"sum exactly at threshold stays finite", "edge", true, models.UnlimitedThreshold},
		{"sum above threshold becomes unlimited", "over", false, models.UnlimitedThreshold + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := []models.Plan{freePlan(), atThreshold, overThreshold}
			orders := []models.Order{{ID: "o1", UserUID: "u1", PlanID: tt.planID, Status: models.StatusDelivered}}

			sum, _ := Aggregate(catalog, orders)

			assert.Equal(t, tt.total, sum.Limits.Contacts)
			assert.Equal(t, tt.finite, sum.IsFinite.Contacts)
		})
	}
}

func TestAggregate_DanglingPlanSkipped(t *testing.T) {
	catalog := []models.Plan{freePlan(), plusPlan()}
	orders := []models.Order{
		{ID: "o1", UserUID: "u1", PlanID: "retired-promo", Status: models.StatusDelivered},
		{ID: "o2", UserUID: "u1", PlanID: "plus", Status: models.StatusDelivered},
	}

	sum, dangling := Aggregate(catalog, orders)

	require.Len(t, dangling, 1)
	assert.Equal(t, "o1", dangling[0].OrderID)
	assert.Equal(t, "retired-promo", dangling[0].PlanID)
	// The healthy order still contributes.
	assert.Equal(t, 50+500, sum.Limits.Contacts)
}

func TestAggregate_BaselineNeverDoubleCounted(t *testing.T) {
	catalog := []models.Plan{freePlan(), plusPlan()}
	orders := []models.Order{
		{ID: "o1", UserUID: "u1", PlanID: models.FreePlanID, Status: models.StatusDelivered},
	}

	sum, dangling := Aggregate(catalog, orders)

	require.Empty(t, dangling)
	assert.Equal(t, 50, sum.Limits.Contacts)
	assert.Equal(t, []string{"Free"}, sum.ActivePlanNames)
}

func TestAggregate_StackedScenario(t *testing.T) {
	catalog := []models.Plan{freePlan(), plusPlan(), ultraPlan()}
	orders := []models.Order{
		{ID: "o1", UserUID: "u1", PlanID: "plus", Status: models.StatusDelivered},
		{ID: "o2", UserUID: "u1", PlanID: "ultra", Status: models.StatusDelivered},
	}

	sum, dangling := Aggregate(catalog, orders)

	require.Empty(t, dangling)
	assert.Equal(t, 5+10+50, sum.Limits.Links)
	assert.Equal(t, 50+500+1000000, sum.Limits.Contacts)
	assert.False(t, sum.IsFinite.Contacts)
	assert.False(t, sum.IsFinite.Exports)
	assert.Equal(t, []string{"Free", "Plus", "Ultra"}, sum.ActivePlanNames)
}
