package models

import "time"

// OrderStatus is the fulfillment lifecycle status of an order. Statuses are
// written by the checkout and fulfillment collaborators; this service only
// reads them.
type OrderStatus string

// Order lifecycle statuses as reported by the checkout collaborator.
const (
	StatusOrderReceived       OrderStatus = "order_received"
	StatusProcessing          OrderStatus = "processing"
	StatusShipped             OrderStatus = "shipped"
	StatusDelivered           OrderStatus = "delivered"
	StatusCancelled           OrderStatus = "cancelled"
	StatusRefunded            OrderStatus = "refunded"
	StatusPaymentFailed       OrderStatus = "payment_failed"
	StatusPendingVerification OrderStatus = "pending_verification"
)

// Contributes reports whether an order in this status grants entitlements.
// Voided statuses never contribute regardless of the referenced plan.
func (s OrderStatus) Contributes() bool {
	switch s {
	case StatusCancelled, StatusRefunded, StatusPaymentFailed, StatusPendingVerification:
		return false
	}
	return true
}

// Valid reports whether the status is one of the known lifecycle values.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOrderReceived, StatusProcessing, StatusShipped, StatusDelivered,
		StatusCancelled, StatusRefunded, StatusPaymentFailed, StatusPendingVerification:
		return true
	}
	return false
}

// Order is one completed (or voided) purchase of a plan by a user. Orders are
// immutable once paid except for fulfillment status transitions.
type Order struct {
	ID        string      // Order identifier assigned by checkout
	UserUID   string      // Owning user
	PlanID    string      // Referenced plan identifier
	Status    OrderStatus // Fulfillment lifecycle status
	CreatedAt time.Time
}
