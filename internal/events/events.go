// Package events carries the change-event feed between the checkout/profile
// writers and the reactive consumers: order ledger changes drive entitlement
// recomputation, profile changes drive authority claim synchronization.
package events

import "github.com/tapfolio/entitlement-service/internal/models"

// Exchange and routing configuration of the feed.
const (
	Exchange      = "entitlements"
	OrdersQueue   = "entitlements.orders"
	OrdersKey     = "order.changed"
	ProfilesQueue = "entitlements.profiles"
	ProfilesKey   = "profile.changed"
)

// OrderEvent announces that an order was recorded or its status changed.
type OrderEvent struct {
	OrderID string             `json:"order_id"`
	UserUID string             `json:"user_uid"`
	PlanID  string             `json:"plan_id"`
	Status  models.OrderStatus `json:"status"`
}

// ProfileEvent announces that the authority fields of a profile changed.
type ProfileEvent struct {
	UserUID  string `json:"user_uid"`
	Role     string `json:"role"`
	Admin    bool   `json:"admin"`
	IsBanned bool   `json:"is_banned"`
}
