package order

import (
	"database/sql"
	"time"
)

// SessionUpdate carries the payment-provider correlation fields written
// when a hosted payment session is opened.
type SessionUpdate struct {
	Provider        string
	ProviderOrderID string
	RedirectURL     string
	SessionToken    string
	ExpiresAt       time.Time
}

// NotificationUpdate is the atomic write a webhook notification maps
// to. PaidAt/CancelledAt are only set when non-nil and only land if the
// column is still empty (write-once).
type NotificationUpdate struct {
	LastProviderStatus    string
	ProviderTransactionID string
	PaymentMethod         string
	VANumber              string
	PaymentStatus         PaymentStatus
	OrderStatus           Status
	PaidAt                *time.Time
	CancelledAt           *time.Time
}

// StatusUpdate is an admin-driven progression. Nil fields are left
// untouched; timestamp fields never overwrite an existing value.
type StatusUpdate struct {
	OrderStatus    *Status
	TrackingNumber *string
	PackedAt       *time.Time
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
}

// Repository defines persistence for the order aggregate.
type Repository interface {
	// CreateTx inserts the order and its item snapshots inside tx and
	// fills in ID, OrderNumber and CreatedAt on ord.
	CreateTx(tx *sql.Tx, ord *Order) error

	// GetByNumberForUser returns the order with items when it belongs to
	// userID, or nil.
	GetByNumberForUser(userID int, orderNumber string) (*Order, error)

	// GetByNumber returns the order with items regardless of owner, or nil.
	GetByNumber(orderNumber string) (*Order, error)

	// FindByProviderRef locates an order by any id form the payment
	// gateway may echo back: the order number, the provider-cleaned id,
	// or the legacy hash-prefixed number. Returns nil when nothing
	// matches.
	FindByProviderRef(ref string) (*Order, error)

	ListByUser(userID int) ([]Order, error)
	ListAll() ([]Order, error)

	UpdateSession(orderID int64, upd SessionUpdate) error

	// ApplyNotificationTx applies upd unless the order has already
	// settled as PAID; the bool reports whether the row was updated.
	// The gate lives in the UPDATE itself so two concurrent deliveries
	// that both read the order as unpaid cannot both apply.
	ApplyNotificationTx(tx *sql.Tx, orderID int64, upd NotificationUpdate) (bool, error)
	UpdateStatus(orderNumber string, upd StatusUpdate) (*Order, error)
}
