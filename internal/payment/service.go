package payment

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clorindastore/storefront-backend/internal/apperr"
	"github.com/clorindastore/storefront-backend/internal/database"
	"github.com/clorindastore/storefront-backend/internal/logging"
	"github.com/clorindastore/storefront-backend/internal/metrics"
	"github.com/clorindastore/storefront-backend/internal/order"
)

// sessionTTL is how long a hosted payment session stays payable.
const sessionTTL = 60 * time.Minute

type OrderStore interface {
	GetByNumberForUser(userID int, orderNumber string) (*order.Order, error)
	FindByProviderRef(ref string) (*order.Order, error)
	UpdateSession(orderID int64, upd order.SessionUpdate) error
	ApplyNotificationTx(tx *sql.Tx, orderID int64, upd order.NotificationUpdate) (bool, error)
}

type CartClearer interface {
	ClearTx(tx *sql.Tx, userID int) error
}

type StockDecrementer interface {
	// DecrementStockTx subtracts qty where stock suffices; false means
	// the conditional update matched no row.
	DecrementStockTx(tx *sql.Tx, variantID int64, qty int) (bool, error)
}

type EventSink interface {
	OrderPaid(ord *order.Order)
}

type Mailer interface {
	OrderPaid(ord *order.Order)
}

// Service opens payment sessions and settles webhook notifications.
type Service struct {
	tx      database.TxRunner
	orders  OrderStore
	carts   CartClearer
	stock   StockDecrementer
	gateway Gateway
	events  EventSink
	mailer  Mailer

	serverKey string
	finishURL string
	now       func() time.Time
}

func NewService(tx database.TxRunner, orders OrderStore, carts CartClearer,
	stock StockDecrementer, gateway Gateway, events EventSink, mailer Mailer,
	serverKey, finishURL string) *Service {
	return &Service{
		tx:        tx,
		orders:    orders,
		carts:     carts,
		stock:     stock,
		gateway:   gateway,
		events:    events,
		mailer:    mailer,
		serverKey: serverKey,
		finishURL: finishURL,
		now:       time.Now,
	}
}

// CreateSession returns a hosted payment session for the caller's
// order. A still-pending order with a stored redirect handle gets the
// same handle back without another gateway round trip, so retrying the
// call is always safe.
func (s *Service) CreateSession(ctx context.Context, userID int, orderNumber string) (*Session, error) {
	ord, err := s.orders.GetByNumberForUser(userID, orderNumber)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, apperr.New(apperr.NotFound, apperr.CodeOrderNotFound, "order not found")
	}
	if ord.PaymentStatus == order.PaymentPaid {
		return nil, apperr.New(apperr.Conflict, apperr.CodeAlreadyPaid, "order is already paid")
	}
	if ord.PaymentStatus == order.PaymentPending && ord.ProviderRedirectURL != "" {
		return &Session{Token: ord.ProviderSessionToken, RedirectURL: ord.ProviderRedirectURL}, nil
	}

	lines := buildLineItems(ord)
	var sum int64
	for _, line := range lines {
		sum += line.Price * int64(line.Quantity)
	}
	if sum != ord.TotalAmount {
		return nil, apperr.Newf(apperr.Internal, apperr.CodeTotalMismatch,
			"line items sum to %d but order %s totals %d", sum, ord.OrderNumber, ord.TotalAmount)
	}

	sess, err := s.gateway.CreateSession(ctx, SessionRequest{
		OrderRef:      ord.OrderNumber,
		GrossAmount:   ord.TotalAmount,
		Items:         lines,
		CustomerName:  ord.ShippingName,
		CustomerPhone: ord.ShippingPhone,
		ExpiryMinutes: int(sessionTTL / time.Minute),
		FinishURL:     s.finishURL,
	})
	if err != nil {
		logging.Log(logging.Event{
			Service:     "payment",
			Event:       "session.gateway_failed",
			OrderNumber: ord.OrderNumber,
			Error:       err.Error(),
		})
		return nil, err
	}

	err = s.orders.UpdateSession(ord.ID, order.SessionUpdate{
		Provider:        s.gateway.Name(),
		ProviderOrderID: ord.OrderNumber,
		RedirectURL:     sess.RedirectURL,
		SessionToken:    sess.Token,
		ExpiresAt:       s.now().Add(sessionTTL),
	})
	if err != nil {
		return nil, err
	}

	logging.Log(logging.Event{Service: "payment", Event: "session.created", OrderNumber: ord.OrderNumber})
	return sess, nil
}

// HandleNotification applies one webhook notification. It is safe
// under arbitrary redelivery: the signature gate runs first, unknown
// orders are acknowledged as no-ops, and an order already settled as
// paid absorbs any further notification without side effects.
func (s *Service) HandleNotification(ctx context.Context, n Notification) error {
	correlationID := uuid.NewString()

	if !VerifySignature(n, s.serverKey) {
		metrics.SignatureFailures.Inc()
		logging.Alert(logging.Event{
			Service:       "payment",
			Event:         "notification.invalid_signature",
			CorrelationID: correlationID,
			Message:       "signature mismatch for order ref " + n.OrderID,
		})
		return apperr.New(apperr.Security, apperr.CodeInvalidSignature, "notification signature mismatch")
	}

	ord, err := s.orders.FindByProviderRef(n.OrderID)
	if err != nil {
		return err
	}
	if ord == nil {
		metrics.PaymentNotifications.WithLabelValues("unknown_order").Inc()
		logging.Log(logging.Event{
			Service:       "payment",
			Event:         "notification.unknown_order",
			CorrelationID: correlationID,
			Outcome:       "ignored",
			Message:       "no order matches ref " + n.OrderID,
		})
		return nil
	}
	if ord.PaymentStatus == order.PaymentPaid {
		metrics.PaymentNotifications.WithLabelValues("already_paid").Inc()
		logging.Log(logging.Event{
			Service:       "payment",
			Event:         "notification.replay",
			OrderNumber:   ord.OrderNumber,
			CorrelationID: correlationID,
			Outcome:       "already_paid",
		})
		return nil
	}

	payStatus, ordStatus := mapTransactionStatus(n.TransactionStatus, n.FraudStatus)
	upd := order.NotificationUpdate{
		LastProviderStatus:    n.TransactionStatus,
		ProviderTransactionID: n.TransactionID,
		PaymentMethod:         n.PaymentType,
		VANumber:              firstVANumber(n),
		PaymentStatus:         payStatus,
		OrderStatus:           ordStatus,
	}
	now := s.now()
	switch payStatus {
	case order.PaymentPaid:
		upd.PaidAt = &now
	case order.PaymentFailed, order.PaymentExpired, order.PaymentCancelledByUser:
		upd.CancelledAt = &now
	}

	// The pre-read PAID check above is only a fast path: two deliveries
	// can both read the order as unpaid before either commits. The
	// update's own gate decides; when it reports the row was already
	// settled, the decrement and cart clear are skipped.
	var applied bool
	err = s.tx.WithinTx(func(tx *sql.Tx) error {
		ok, err := s.orders.ApplyNotificationTx(tx, ord.ID, upd)
		if err != nil {
			return err
		}
		applied = ok
		if !applied || payStatus != order.PaymentPaid {
			return nil
		}
		for _, it := range ord.Items {
			if it.VariantID == nil {
				continue
			}
			ok, err := s.stock.DecrementStockTx(tx, *it.VariantID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Newf(apperr.Conflict, apperr.CodeStockExhaustedAtSettle,
					"stock for %s exhausted while settling %s", it.ProductName, ord.OrderNumber)
			}
		}
		return s.carts.ClearTx(tx, ord.UserID)
	})
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeStockExhaustedAtSettle {
			metrics.StockConflicts.Inc()
			logging.Alert(logging.Event{
				Service:       "payment",
				Event:         "notification.stock_exhausted",
				OrderNumber:   ord.OrderNumber,
				CorrelationID: correlationID,
				Message:       "paid order could not be settled, manual reconciliation needed",
				Error:         err.Error(),
			})
		}
		return err
	}
	if !applied {
		metrics.PaymentNotifications.WithLabelValues("already_paid").Inc()
		logging.Log(logging.Event{
			Service:       "payment",
			Event:         "notification.replay",
			OrderNumber:   ord.OrderNumber,
			CorrelationID: correlationID,
			Outcome:       "already_paid",
		})
		return nil
	}

	metrics.PaymentNotifications.WithLabelValues("applied").Inc()
	logging.Log(logging.Event{
		Service:       "payment",
		Event:         "notification.applied",
		OrderNumber:   ord.OrderNumber,
		CorrelationID: correlationID,
		Outcome:       string(payStatus),
	})

	if payStatus == order.PaymentPaid {
		metrics.Settlements.Inc()
		ord.PaymentStatus = payStatus
		ord.OrderStatus = ordStatus
		if s.events != nil {
			s.events.OrderPaid(ord)
		}
		if s.mailer != nil {
			s.mailer.OrderPaid(ord)
		}
	}
	return nil
}

// buildLineItems turns the order's item snapshots plus a synthetic
// shipping line into the gateway basket.
func buildLineItems(ord *order.Order) []LineItem {
	lines := make([]LineItem, 0, len(ord.Items)+1)
	for _, it := range ord.Items {
		id := strconv.FormatInt(it.ProductID, 10)
		if it.VariantID != nil {
			id += "-" + strconv.FormatInt(*it.VariantID, 10)
		}
		name := it.ProductName
		if it.Size != "" {
			name += " (" + it.Size + ")"
		}
		lines = append(lines, LineItem{ID: id, Name: name, Price: it.UnitPrice, Quantity: it.Quantity})
	}
	shippingName := "Shipping " + strings.ToUpper(ord.ShippingCourier)
	if ord.ShippingService != "" {
		shippingName += " " + ord.ShippingService
	}
	lines = append(lines, LineItem{ID: "SHIPPING", Name: shippingName, Price: ord.ShippingAmount, Quantity: 1})
	return lines
}
