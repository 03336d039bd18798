// Package metrics registers the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AggregationRuns counts entitlement profile computations, by outcome.
	AggregationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "entitlement_aggregation_runs_total",
		Help: "Entitlement profile computations by outcome.",
	}, []string{"outcome"})

	// DanglingPlanSkips counts orders skipped because their plan is gone
	// from the catalog.
	DanglingPlanSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "entitlement_dangling_plan_skips_total",
		Help: "Orders skipped during aggregation due to missing plans.",
	})

	// ReconcilerWrites counts visual mirror corrections actually written.
	ReconcilerWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "entitlement_visual_reconciler_writes_total",
		Help: "Visual mirror drift corrections written to profiles.",
	})

	// ClaimSyncs counts claim synchronization attempts, by result.
	ClaimSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authsync_claim_syncs_total",
		Help: "Authority claim synchronization attempts by result.",
	}, []string{"result"})

	// BansEnforced counts forced sign-outs due to a ban transition.
	BansEnforced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authsync_bans_enforced_total",
		Help: "Sessions terminated because the profile was banned.",
	})
)
