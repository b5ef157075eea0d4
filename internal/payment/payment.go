package payment

import (
	"github.com/clorindastore/storefront-backend/internal/order"
)

// Notification is the webhook payload the payment gateway posts after
// every transaction state change. Only the fields the settlement flow
// needs are decoded; unknown fields are ignored.
type Notification struct {
	OrderID           string     `json:"order_id"`
	StatusCode        string     `json:"status_code"`
	GrossAmount       string     `json:"gross_amount"`
	SignatureKey      string     `json:"signature_key"`
	TransactionStatus string     `json:"transaction_status"`
	FraudStatus       string     `json:"fraud_status"`
	TransactionID     string     `json:"transaction_id"`
	PaymentType       string     `json:"payment_type"`
	VANumbers         []VANumber `json:"va_numbers"`
}

// VANumber is one virtual-account entry in a bank-transfer notification.
type VANumber struct {
	Bank     string `json:"bank"`
	VANumber string `json:"va_number"`
}

// mapTransactionStatus translates the gateway's transaction status into
// the internal payment/order status pair. Unrecognized statuses fall
// back to the pending pair so a new gateway status can never settle or
// cancel an order by accident.
func mapTransactionStatus(status, fraud string) (order.PaymentStatus, order.Status) {
	switch status {
	case "capture":
		if fraud == "challenge" {
			return order.PaymentPending, order.StatusAwaitingPayment
		}
		return order.PaymentPaid, order.StatusProcessing
	case "settlement":
		return order.PaymentPaid, order.StatusProcessing
	case "pending":
		return order.PaymentPending, order.StatusAwaitingPayment
	case "expire":
		return order.PaymentExpired, order.StatusCancelled
	case "cancel":
		return order.PaymentCancelledByUser, order.StatusCancelled
	case "deny", "failure":
		return order.PaymentFailed, order.StatusCancelled
	}
	return order.PaymentPending, order.StatusAwaitingPayment
}

func firstVANumber(n Notification) string {
	if len(n.VANumbers) == 0 {
		return ""
	}
	return n.VANumbers[0].VANumber
}
