// Package models contains the domain structures of the entitlement service:
// plans, orders, usage counters, the computed entitlement profile and the
// authority claim set. These types are shared by the business logic and the
// storage layer.
package models

// FreePlanID is the identifier of the implicit baseline plan. Every user is
// entitled to it without holding an order; it is seeded by migration and must
// never appear in the order ledger.
const FreePlanID = "free"

// UnlimitedThreshold is the sentinel above which a numeric limit is treated
// as unlimited. Plans that grant "unlimited" contacts or exports store a
// value larger than this.
const UnlimitedThreshold = 500000

// Limits holds the stackable capacity limits granted by a plan. When several
// orders contribute, the limits of their plans are summed.
type Limits struct {
	Links               int `json:"links"`
	Contacts            int `json:"contacts"`
	Exports             int `json:"exports"`
	PortfolioItems      int `json:"portfolio_items"`
	PrivateContentItems int `json:"private_content_items"`
}

// Add accumulates another set of limits into the receiver.
func (l *Limits) Add(other Limits) {
	l.Links += other.Links
	l.Contacts += other.Contacts
	l.Exports += other.Exports
	l.PortfolioItems += other.PortfolioItems
	l.PrivateContentItems += other.PrivateContentItems
}

// Features holds the boolean feature flags of a plan. Flags are combined with
// logical OR across contributing plans.
type Features struct {
	Portfolio      bool `json:"portfolio"`
	PrivateContent bool `json:"private_content"`
	CustomBranding bool `json:"custom_branding"`
	Wallpaper      bool `json:"wallpaper"`
}

// Or merges another feature set into the receiver.
func (f *Features) Or(other Features) {
	f.Portfolio = f.Portfolio || other.Portfolio
	f.PrivateContent = f.PrivateContent || other.PrivateContent
	f.CustomBranding = f.CustomBranding || other.CustomBranding
	f.Wallpaper = f.Wallpaper || other.Wallpaper
}

// Visuals holds the visual entitlement flags of a plan, mirrored onto the
// profile document for cheap reads.
type Visuals struct {
	GoldRing     bool `json:"gold_ring"`
	RoyalTexture bool `json:"royal_texture"`
}

// Or merges another visual set into the receiver.
func (v *Visuals) Or(other Visuals) {
	v.GoldRing = v.GoldRing || other.GoldRing
	v.RoyalTexture = v.RoyalTexture || other.RoyalTexture
}

// Plan is a purchasable entitlement bundle. The catalog is admin-writable and
// read by every session, so it is cached aggressively.
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Tier     int      `json:"tier"`
	Active   bool     `json:"active"`
	Limits   Limits   `json:"limits"`
	Features Features `json:"features"`
	Visuals  Visuals  `json:"visuals"`
}

// DummyPlan receives plan data from an admin JSON request before it is
// converted into a Plan.
type DummyPlan struct {
	ID                  string `json:"id" validate:"required,alphanum"`
	Name                string `json:"name" validate:"required"`
	Price               int    `json:"price" validate:"gte=0"`
	Tier                int    `json:"tier" validate:"gte=0"`
	Active              bool   `json:"active"`
	Links               int    `json:"links" validate:"gte=0"`
	Contacts            int    `json:"contacts" validate:"gte=0"`
	Exports             int    `json:"exports" validate:"gte=0"`
	PortfolioItems      int    `json:"portfolio_items" validate:"gte=0"`
	PrivateContentItems int    `json:"private_content_items" validate:"gte=0"`
	Portfolio           bool   `json:"portfolio"`
	PrivateContent      bool   `json:"private_content"`
	CustomBranding      bool   `json:"custom_branding"`
	Wallpaper           bool   `json:"wallpaper"`
	GoldRing            bool   `json:"gold_ring"`
	RoyalTexture        bool   `json:"royal_texture"`
}

// ToPlan converts the request DTO into the domain Plan.
func (d DummyPlan) ToPlan() Plan {
	return Plan{
		ID:     d.ID,
		Name:   d.Name,
		Price:  d.Price,
		Tier:   d.Tier,
		Active: d.Active,
		Limits: Limits{
			Links:               d.Links,
			Contacts:            d.Contacts,
			Exports:             d.Exports,
			PortfolioItems:      d.PortfolioItems,
			PrivateContentItems: d.PrivateContentItems,
		},
		Features: Features{
			Portfolio:      d.Portfolio,
			PrivateContent: d.PrivateContent,
			CustomBranding: d.CustomBranding,
			Wallpaper:      d.Wallpaper,
		},
		Visuals: Visuals{
			GoldRing:     d.GoldRing,
			RoyalTexture: d.RoyalTexture,
		},
	}
}

// DefaultBaseline is the hardcoded fallback used when the catalog does not
// contain the free plan. It matches the migration seed.
func DefaultBaseline() Plan {
	return Plan{
		ID:     FreePlanID,
		Name:   "Free",
		Active: true,
		Limits: Limits{
			Links:               5,
			Contacts:            50,
			Exports:             5,
			PortfolioItems:      0,
			PrivateContentItems: 0,
		},
	}
}
