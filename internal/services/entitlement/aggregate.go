// Package entitlement computes the per-user effective entitlement profile
// from the plan catalog and the order ledger, keeps it fresh on order change
// events and reconciles the visual mirror cached on the profile.
package entitlement

import (
	"github.com/tapfolio/entitlement-service/internal/models"
)

// Summary is the pure aggregation result: the stacked limits and merged
// flags of the baseline plan plus every contributing order, before usage is
// attached.
type Summary struct {
	Limits          models.Limits
	Features        models.Features
	Visuals         models.Visuals
	IsFinite        models.Finite
	ActivePlanNames []string
}

// DanglingOrder identifies an order whose plan is gone from the catalog.
// Such orders are skipped, never fatal.
type DanglingOrder struct {
	OrderID string
	PlanID  string
}

// Aggregate folds the order ledger over the catalog. Numeric limits stack
// additively, feature and visual flags merge with OR, and the baseline free
// plan always contributes exactly once. Orders in voided statuses and orders
// referencing unknown plans contribute nothing; the latter are reported back
// so the caller can log them.
//
// The function is pure: same inputs, same output, no I/O.
func Aggregate(catalog []models.Plan, orders []models.Order) (Summary, []DanglingOrder) {
	byID := make(map[string]models.Plan, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	baseline, ok := byID[models.FreePlanID]
	if !ok {
		baseline = models.DefaultBaseline()
	}

	sum := Summary{
		Limits:          baseline.Limits,
		Features:        baseline.Features,
		Visuals:         baseline.Visuals,
		ActivePlanNames: []string{baseline.Name},
	}

	var dangling []DanglingOrder
	for _, o := range orders {
		if !o.Status.Contributes() {
			continue
		}
		plan, ok := byID[o.PlanID]
		if !ok {
			dangling = append(dangling, DanglingOrder{OrderID: o.ID, PlanID: o.PlanID})
			continue
		}
		// The baseline is implicit; an order referencing it must not
		// double-count.
		if plan.ID == baseline.ID {
			continue
		}
		sum.Limits.Add(plan.Limits)
		sum.Features.Or(plan.Features)
		sum.Visuals.Or(plan.Visuals)
		sum.ActivePlanNames = append(sum.ActivePlanNames, plan.Name)
	}

	sum.ActivePlanNames = dedupe(sum.ActivePlanNames)
	sum.IsFinite = models.Finite{
		Contacts: sum.Limits.Contacts <= models.UnlimitedThreshold,
		Exports:  sum.Limits.Exports <= models.UnlimitedThreshold,
	}
	return sum, dangling
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := names[:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}
