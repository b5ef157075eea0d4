package shipping

import "context"

// ServiceOption is one courier service a shipment can be booked with.
type ServiceOption struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Service     string `json:"service"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
	Etd         string `json:"etd"`
}

// Client quotes shipping cost for a destination, weight and courier.
// An empty result is a valid answer ("no services available"); network
// and decoding failures surface as gateway-kind errors.
type Client interface {
	Quote(ctx context.Context, destinationID, weightGrams int, courier string) ([]ServiceOption, error)
}
