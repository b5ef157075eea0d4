package order

import (
	"database/sql"
	"testing"
	"time"

	"github.com/clorindastore/storefront-backend/internal/apperr"
)

// fakeRepo applies StatusUpdate with the same write-once timestamp
// semantics as the SQL implementation.
type fakeRepo struct {
	orders map[string]*Order
}

func newFakeRepo(orders ...*Order) *fakeRepo {
	m := make(map[string]*Order)
	for _, o := range orders {
		m[o.OrderNumber] = o
	}
	return &fakeRepo{orders: m}
}

func (f *fakeRepo) CreateTx(tx *sql.Tx, ord *Order) error { return nil }

func (f *fakeRepo) GetByNumberForUser(userID int, orderNumber string) (*Order, error) {
	o := f.orders[orderNumber]
	if o == nil || o.UserID != userID {
		return nil, nil
	}
	return o, nil
}

func (f *fakeRepo) GetByNumber(orderNumber string) (*Order, error) {
	return f.orders[orderNumber], nil
}

func (f *fakeRepo) FindByProviderRef(ref string) (*Order, error) { return f.orders[ref], nil }

func (f *fakeRepo) ListByUser(userID int) ([]Order, error) { return nil, nil }
func (f *fakeRepo) ListAll() ([]Order, error)              { return nil, nil }

func (f *fakeRepo) UpdateSession(orderID int64, upd SessionUpdate) error { return nil }

func (f *fakeRepo) ApplyNotificationTx(tx *sql.Tx, orderID int64, upd NotificationUpdate) (bool, error) {
	return true, nil
}

func (f *fakeRepo) UpdateStatus(orderNumber string, upd StatusUpdate) (*Order, error) {
	o := f.orders[orderNumber]
	if o == nil {
		return nil, nil
	}
	if upd.OrderStatus != nil {
		o.OrderStatus = *upd.OrderStatus
	}
	if upd.TrackingNumber != nil {
		o.TrackingNumber = *upd.TrackingNumber
	}
	if o.PackedAt == nil {
		o.PackedAt = upd.PackedAt
	}
	if o.ShippedAt == nil {
		o.ShippedAt = upd.ShippedAt
	}
	if o.DeliveredAt == nil {
		o.DeliveredAt = upd.DeliveredAt
	}
	if o.CancelledAt == nil {
		o.CancelledAt = upd.CancelledAt
	}
	return o, nil
}

func newTestService(repo Repository, t0 time.Time) *Service {
	s := NewService(repo)
	s.now = func() time.Time { return t0 }
	return s
}

func TestAdminUpdateStatusRequiresPaid(t *testing.T) {
	repo := newFakeRepo(&Order{OrderNumber: "CLRD-2025-00001", PaymentStatus: PaymentPending, OrderStatus: StatusAwaitingPayment})
	svc := newTestService(repo, time.Now())

	_, err := svc.AdminUpdateStatus("CLRD-2025-00001", StatusPacked)
	if apperr.CodeOf(err) != apperr.CodeOrderNotPaid {
		t.Fatalf("expected %s, got %v", apperr.CodeOrderNotPaid, err)
	}
}

func TestAdminCanCancelUnpaidOrder(t *testing.T) {
	repo := newFakeRepo(&Order{OrderNumber: "CLRD-2025-00001", PaymentStatus: PaymentPending, OrderStatus: StatusAwaitingPayment})
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, t0)

	ord, err := svc.AdminUpdateStatus("CLRD-2025-00001", StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ord.OrderStatus != StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", ord.OrderStatus)
	}
	if ord.CancelledAt == nil || !ord.CancelledAt.Equal(t0) {
		t.Fatalf("expected cancelledAt %v, got %v", t0, ord.CancelledAt)
	}
}

func TestPackedTimestampIsWriteOnce(t *testing.T) {
	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo(&Order{OrderNumber: "CLRD-2025-00002", PaymentStatus: PaymentPaid, OrderStatus: StatusProcessing})

	svc := newTestService(repo, first)
	if _, err := svc.AdminUpdateStatus("CLRD-2025-00002", StatusPacked); err != nil {
		t.Fatalf("first transition: %v", err)
	}

	svc = newTestService(repo, first.Add(time.Hour))
	ord, err := svc.AdminUpdateStatus("CLRD-2025-00002", StatusPacked)
	if err != nil {
		t.Fatalf("second transition: %v", err)
	}
	if !ord.PackedAt.Equal(first) {
		t.Fatalf("packedAt overwritten: got %v, want %v", ord.PackedAt, first)
	}
}

func TestTrackingAutoAdvancesPackedToShipped(t *testing.T) {
	t0 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := newFakeRepo(&Order{OrderNumber: "CLRD-2025-00003", PaymentStatus: PaymentPaid, OrderStatus: StatusPacked})
	svc := newTestService(repo, t0)

	ord, err := svc.AdminUpdateTracking("CLRD-2025-00003", "JNE123456789")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ord.OrderStatus != StatusShipped {
		t.Fatalf("expected SHIPPED, got %s", ord.OrderStatus)
	}
	if ord.TrackingNumber != "JNE123456789" {
		t.Fatalf("tracking number not stored: %q", ord.TrackingNumber)
	}
	if ord.ShippedAt == nil || !ord.ShippedAt.Equal(t0) {
		t.Fatalf("expected shippedAt %v, got %v", t0, ord.ShippedAt)
	}
}

func TestTrackingRejectedForUnpaidOrder(t *testing.T) {
	repo := newFakeRepo(&Order{OrderNumber: "CLRD-2025-00004", PaymentStatus: PaymentPending, OrderStatus: StatusAwaitingPayment})
	svc := newTestService(repo, time.Now())

	_, err := svc.AdminUpdateTracking("CLRD-2025-00004", "JNE123")
	if apperr.CodeOf(err) != apperr.CodeOrderNotPaid {
		t.Fatalf("expected %s, got %v", apperr.CodeOrderNotPaid, err)
	}
}

func TestAdminUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(newFakeRepo(), time.Now())
	_, err := svc.AdminUpdateStatus("CLRD-2025-00005", Status("REFUNDED"))
	if apperr.CodeOf(err) != apperr.CodeInvalidStatus {
		t.Fatalf("expected %s, got %v", apperr.CodeInvalidStatus, err)
	}
}

func TestNumberFormat(t *testing.T) {
	at := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	if got := Number(23, at); got != "CLRD-2025-00023" {
		t.Fatalf("expected CLRD-2025-00023, got %s", got)
	}
	if got := Number(123456, at); got != "CLRD-2025-123456" {
		t.Fatalf("ids beyond five digits must not be truncated, got %s", got)
	}
}
