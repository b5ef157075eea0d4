package order

import (
	"fmt"
	"time"
)

type PaymentStatus string

const (
	PaymentPending         PaymentStatus = "PENDING"
	PaymentPaid            PaymentStatus = "PAID"
	PaymentFailed          PaymentStatus = "FAILED"
	PaymentExpired         PaymentStatus = "EXPIRED"
	PaymentCancelledByUser PaymentStatus = "CANCELLED_BY_USER"
)

type Status string

const (
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusProcessing      Status = "PROCESSING"
	StatusPacked          Status = "PACKED"
	StatusShipped         Status = "SHIPPED"
	StatusDelivered       Status = "DELIVERED"
	StatusCancelled       Status = "CANCELLED"
)

// ValidStatus reports whether s is one of the admin-settable statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusAwaitingPayment, StatusProcessing, StatusPacked, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is the durable aggregate root. The shipping_* fields are a
// frozen copy of the address at creation time, and the items are
// immutable snapshots; later catalog or address edits never reach a
// created order.
type Order struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"orderNumber"`
	UserID      int    `json:"userId"`
	AddressID   int64  `json:"addressId"`

	ShippingName            string `json:"shippingName"`
	ShippingPhone           string `json:"shippingPhone"`
	ShippingAddress         string `json:"shippingAddress"`
	ShippingProvinceID      int    `json:"shippingProvinceId"`
	ShippingCityID          int    `json:"shippingCityId"`
	ShippingSubdistrictID   int    `json:"shippingSubdistrictId"`
	ShippingProvinceName    string `json:"shippingProvinceName"`
	ShippingCityName        string `json:"shippingCityName"`
	ShippingSubdistrictName string `json:"shippingSubdistrictName"`
	ShippingPostalCode      string `json:"shippingPostalCode"`

	ShippingCourier string `json:"shippingCourier"`
	ShippingService string `json:"shippingService"`
	ShippingEtd     string `json:"shippingEtd"`

	SubtotalAmount int64 `json:"subtotalAmount"`
	ShippingAmount int64 `json:"shippingAmount"`
	TotalAmount    int64 `json:"totalAmount"`

	PaymentStatus PaymentStatus `json:"paymentStatus"`
	OrderStatus   Status        `json:"orderStatus"`

	PaymentProvider       string `json:"paymentProvider,omitempty"`
	ProviderOrderID       string `json:"providerOrderId,omitempty"`
	ProviderRedirectURL   string `json:"providerRedirectUrl,omitempty"`
	ProviderSessionToken  string `json:"-"`
	LastProviderStatus    string `json:"lastProviderStatus,omitempty"`
	ProviderTransactionID string `json:"providerTransactionId,omitempty"`
	PaymentMethod         string `json:"paymentMethod,omitempty"`
	VANumber              string `json:"vaNumber,omitempty"`

	TrackingNumber string `json:"trackingNumber,omitempty"`

	PaymentExpiresAt *time.Time `json:"paymentExpiresAt,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	PackedAt         *time.Time `json:"packedAt,omitempty"`
	ShippedAt        *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt      *time.Time `json:"deliveredAt,omitempty"`
	CancelledAt      *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Items []Item `json:"items,omitempty"`
}

// Item is an immutable per-line snapshot owned by exactly one order.
// It is what makes the order a stable receipt independent of later
// catalog changes.
type Item struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"orderId"`
	ProductID   int64  `json:"productId"`
	VariantID   *int64 `json:"variantId"`
	ProductName string `json:"productName"`
	ProductSlug string `json:"productSlug"`
	Size        string `json:"size"`
	ImageURL    string `json:"imageUrl"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

// NumberPrefix is the store prefix embedded in every order number.
const NumberPrefix = "CLRD"

// Number derives the display order number from the numeric id, e.g.
// CLRD-2025-00023. Uniqueness follows from the id itself; no separate
// counter is involved.
func Number(id int64, t time.Time) string {
	return fmt.Sprintf("%s-%d-%05d", NumberPrefix, t.UTC().Year(), id)
}
