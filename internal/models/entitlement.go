package models

import "time"

// Finite reports, per metered resource, whether the summed limit is below the
// unlimited sentinel and must therefore be enforced.
type Finite struct {
	Contacts bool `json:"contacts"`
	Exports  bool `json:"exports"`
}

// EntitlementProfile is the computed, per-user effective entitlement set: the
// baseline plan plus the stacked contribution of every non-voided order. It is
// derived state, recomputed on every order ledger change, and never persisted
// as a source of truth.
type EntitlementProfile struct {
	Limits          Limits     `json:"limits"`
	Features        Features   `json:"features"`
	Visuals         Visuals    `json:"visuals"`
	IsFinite        Finite     `json:"is_finite"`
	ActivePlanNames []string   `json:"active_plan_names"`
	Usage           UsageStats `json:"usage"`
	ComputedAt      time.Time  `json:"computed_at"`
}

// CanAddContact reports whether saving one more contact stays within the
// stacked contacts limit.
func (p *EntitlementProfile) CanAddContact() bool {
	if !p.IsFinite.Contacts {
		return true
	}
	return p.Usage.ContactsCount < p.Limits.Contacts
}

// CanExport reports whether one more export this month stays within the
// stacked exports limit.
func (p *EntitlementProfile) CanExport() bool {
	if !p.IsFinite.Exports {
		return true
	}
	return p.Usage.ExportsCount < p.Limits.Exports
}

// Mirror returns the visual mirror view of the profile, the three derived
// flags cached on the profile document.
func (p *EntitlementProfile) Mirror() VisualMirror {
	return VisualMirror{
		GoldRing:       p.Visuals.GoldRing,
		RoyalTexture:   p.Visuals.RoyalTexture,
		CustomBranding: p.Features.CustomBranding,
	}
}
