package models

import "time"

// User is a registered account. Role and the legacy Admin flag express the
// intended authority of the account; actual authority is always confirmed by
// the claim store (see Claims).
type User struct {
	UID          string
	Email        string
	Username     string
	PasswordHash string
	Role         string // "user", "admin" or "super_admin"
	Admin        bool   // legacy admin flag, still honored when set
	IsBanned     bool
	CreatedAt    time.Time
}

// Roles stored on the profile document.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Claims is the authority assertion set issued by the token store. Claims are
// trusted over the profile's role fields; the synchronizer only adopts them
// after a refresh round-trip.
type Claims struct {
	Admin      bool `json:"admin"`
	SuperAdmin bool `json:"super_admin"`
}

// ExpectedClaims derives the authority the profile document requests. Either
// the role string or the legacy flag grants admin; super_admin implies admin.
func (u *User) ExpectedClaims() Claims {
	return Claims{
		Admin:      u.Role == RoleAdmin || u.Role == RoleSuperAdmin || u.Admin,
		SuperAdmin: u.Role == RoleSuperAdmin,
	}
}

// VisualMirror is the cached copy of derived visual entitlements stored on
// the profile document so that rendering paths can read a cheap flag without
// recomputing the full entitlement profile.
type VisualMirror struct {
	GoldRing       bool `json:"gold_ring"`
	RoyalTexture   bool `json:"royal_texture"`
	CustomBranding bool `json:"custom_branding"`
}
