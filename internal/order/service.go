package order

import (
	"time"

	"github.com/clorindastore/storefront-backend/internal/apperr"
)

// Service layers order queries and the admin status machine on top of
// the repository. Payment-driven mutations live in the payment package;
// this service only moves orders forward after they are paid.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) ListUserOrders(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) GetUserOrder(userID int, orderNumber string) (*Order, error) {
	ord, err := s.repo.GetByNumberForUser(userID, orderNumber)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, apperr.New(apperr.NotFound, apperr.CodeOrderNotFound, "order not found")
	}
	return ord, nil
}

func (s *Service) AdminListOrders() ([]Order, error) {
	return s.repo.ListAll()
}

func (s *Service) AdminGetOrder(orderNumber string) (*Order, error) {
	ord, err := s.repo.GetByNumber(orderNumber)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, apperr.New(apperr.NotFound, apperr.CodeOrderNotFound, "order not found")
	}
	return ord, nil
}

// AdminUpdateStatus advances the order status. Forward progression
// (PACKED/SHIPPED/DELIVERED and PROCESSING) requires a paid order;
// CANCELLED and AWAITING_PAYMENT are always allowed so an unpaid order
// can be cancelled manually. Each timestamp is stamped the first time
// its state is entered and never overwritten.
func (s *Service) AdminUpdateStatus(orderNumber string, status Status) (*Order, error) {
	if !ValidStatus(status) {
		return nil, apperr.New(apperr.Validation, apperr.CodeInvalidStatus, "invalid order status")
	}

	ord, err := s.AdminGetOrder(orderNumber)
	if err != nil {
		return nil, err
	}

	if ord.PaymentStatus != PaymentPaid && status != StatusCancelled && status != StatusAwaitingPayment {
		return nil, apperr.New(apperr.Validation, apperr.CodeOrderNotPaid,
			"only paid orders can be progressed to PACKED/SHIPPED/DELIVERED")
	}

	now := s.now()
	upd := StatusUpdate{OrderStatus: &status}
	switch status {
	case StatusPacked:
		if ord.PackedAt == nil {
			upd.PackedAt = &now
		}
	case StatusShipped:
		if ord.ShippedAt == nil {
			upd.ShippedAt = &now
		}
	case StatusDelivered:
		if ord.DeliveredAt == nil {
			upd.DeliveredAt = &now
		}
	case StatusCancelled:
		if ord.CancelledAt == nil {
			upd.CancelledAt = &now
		}
	}

	updated, err := s.repo.UpdateStatus(orderNumber, upd)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.New(apperr.NotFound, apperr.CodeOrderNotFound, "order not found")
	}
	return updated, nil
}

// AdminUpdateTracking stores the tracking number. Setting it on a
// PACKED order auto-advances to SHIPPED; shippedAt is stamped once.
func (s *Service) AdminUpdateTracking(orderNumber, trackingNumber string) (*Order, error) {
	ord, err := s.AdminGetOrder(orderNumber)
	if err != nil {
		return nil, err
	}
	if ord.PaymentStatus != PaymentPaid {
		return nil, apperr.New(apperr.Validation, apperr.CodeOrderNotPaid, "order has not been paid")
	}

	upd := StatusUpdate{TrackingNumber: &trackingNumber}
	if ord.ShippedAt == nil {
		now := s.now()
		upd.ShippedAt = &now
	}
	if ord.OrderStatus == StatusPacked {
		shipped := StatusShipped
		upd.OrderStatus = &shipped
	}

	updated, err := s.repo.UpdateStatus(orderNumber, upd)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.New(apperr.NotFound, apperr.CodeOrderNotFound, "order not found")
	}
	return updated, nil
}
