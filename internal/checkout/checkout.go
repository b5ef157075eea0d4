package checkout

import (
	"github.com/clorindastore/storefront-backend/internal/address"
	"github.com/clorindastore/storefront-backend/internal/cart"
	"github.com/clorindastore/storefront-backend/internal/shipping"
)

// Summary is the priced checkout preview: live cart lines, the resolved
// shipping address and, when a courier was chosen, the quoted service
// options. Building it has no side effects.
type Summary struct {
	Address          *address.Address         `json:"address"`
	Items            []cart.SnapshotItem      `json:"items"`
	Totals           Totals                   `json:"totals"`
	ShippingEstimate []shipping.ServiceOption `json:"shippingEstimate,omitempty"`
}

type Totals struct {
	Subtotal         int64 `json:"subtotal"`
	TotalWeightGrams int   `json:"totalWeightGrams"`
}

// CreateOrderInput selects the destination and the courier service for
// a new order. The client never supplies a price; the server re-quotes.
type CreateOrderInput struct {
	AddressID      *int64 `json:"addressId"`
	Courier        string `json:"courier"`
	CourierService string `json:"courierService"`
}
