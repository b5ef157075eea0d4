package checkout

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/clorindastore/storefront-backend/internal/address"
	"github.com/clorindastore/storefront-backend/internal/apperr"
	"github.com/clorindastore/storefront-backend/internal/cart"
	"github.com/clorindastore/storefront-backend/internal/order"
	"github.com/clorindastore/storefront-backend/internal/shipping"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithinTx(fn func(tx *sql.Tx) error) error { return fn(nil) }

type fakeCarts struct {
	items []cart.SnapshotItem
}

func (f *fakeCarts) Snapshot(userID int) ([]cart.SnapshotItem, error) { return f.items, nil }

type fakeAddresses struct {
	addr *address.Address
}

func (f *fakeAddresses) Resolve(userID int, addressID *int64) (*address.Address, error) {
	if f.addr == nil {
		return nil, apperr.New(apperr.Validation, apperr.CodeNoPrimaryAddress, "no primary address")
	}
	return f.addr, nil
}

type fakeQuotes struct {
	options []shipping.ServiceOption
	err     error
	calls   int
}

func (f *fakeQuotes) Quote(ctx context.Context, destinationID, weightGrams int, courier string) ([]shipping.ServiceOption, error) {
	f.calls++
	return f.options, f.err
}

type fakeStock struct {
	stock map[int64]int
}

func (f *fakeStock) VariantStockTx(tx *sql.Tx, variantID int64) (int, bool, error) {
	s, ok := f.stock[variantID]
	return s, ok, nil
}

type fakeOrders struct {
	created []*order.Order
}

func (f *fakeOrders) CreateTx(tx *sql.Tx, ord *order.Order) error {
	ord.ID = int64(len(f.created) + 1)
	ord.OrderNumber = order.Number(ord.ID, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	f.created = append(f.created, ord)
	return nil
}

type denyGuard struct{}

func (denyGuard) Acquire(ctx context.Context, key string) (bool, error) { return false, nil }

func (denyGuard) Release(ctx context.Context, key string) error { return nil }

type recordingGuard struct {
	acquires int
	releases int
}

func (g *recordingGuard) Acquire(ctx context.Context, key string) (bool, error) {
	g.acquires++
	return true, nil
}

func (g *recordingGuard) Release(ctx context.Context, key string) error {
	g.releases++
	return nil
}

func variantID(v int64) *int64 { return &v }

func testItems() []cart.SnapshotItem {
	return []cart.SnapshotItem{{
		ProductID:       1,
		VariantID:       variantID(10),
		ProductName:     "Linen Shirt",
		ProductSlug:     "linen-shirt",
		Size:            "M",
		Quantity:        2,
		UnitPrice:       50000,
		UnitWeightGrams: 300,
	}}
}

func testAddress() *address.Address {
	return &address.Address{ID: 5, UserID: 1, RecipientName: "Ayu", SubdistrictID: 33, IsPrimary: true}
}

func regOption() []shipping.ServiceOption {
	return []shipping.ServiceOption{{Name: "JNE", Code: "jne", Service: "REG", Cost: 15000, Etd: "2-3 day"}}
}

func newTestService(carts *fakeCarts, addrs *fakeAddresses, quotes *fakeQuotes,
	stock *fakeStock, orders *fakeOrders, guard Guard) *Service {
	if guard == nil {
		guard = NopGuard{}
	}
	return NewService(fakeTxRunner{}, carts, addrs, quotes, stock, orders, guard, nil)
}

func TestSummaryEmptyCart(t *testing.T) {
	svc := newTestService(&fakeCarts{}, &fakeAddresses{addr: testAddress()}, &fakeQuotes{}, &fakeStock{}, &fakeOrders{}, nil)

	_, err := svc.Summary(context.Background(), 1, nil, "")
	if apperr.CodeOf(err) != apperr.CodeEmptyCart {
		t.Fatalf("expected %s, got %v", apperr.CodeEmptyCart, err)
	}
}

func TestSummaryTotalsAndOptionalQuote(t *testing.T) {
	quotes := &fakeQuotes{options: regOption()}
	svc := newTestService(&fakeCarts{items: testItems()}, &fakeAddresses{addr: testAddress()}, quotes, &fakeStock{}, &fakeOrders{}, nil)

	sum, err := svc.Summary(context.Background(), 1, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Totals.Subtotal != 100000 {
		t.Fatalf("expected subtotal 100000, got %d", sum.Totals.Subtotal)
	}
	if sum.Totals.TotalWeightGrams != 600 {
		t.Fatalf("expected weight 600, got %d", sum.Totals.TotalWeightGrams)
	}
	if quotes.calls != 0 {
		t.Fatal("quote must not be called without a courier")
	}

	sum, err = svc.Summary(context.Background(), 1, nil, "jne")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.ShippingEstimate) != 1 || sum.ShippingEstimate[0].Service != "REG" {
		t.Fatalf("expected REG estimate, got %+v", sum.ShippingEstimate)
	}
}

func TestSummaryZeroWeightIsOperationalError(t *testing.T) {
	items := testItems()
	items[0].UnitWeightGrams = 0
	svc := newTestService(&fakeCarts{items: items}, &fakeAddresses{addr: testAddress()}, &fakeQuotes{}, &fakeStock{}, &fakeOrders{}, nil)

	_, err := svc.Summary(context.Background(), 1, nil, "")
	if apperr.CodeOf(err) != apperr.CodeInvalidWeight {
		t.Fatalf("expected %s, got %v", apperr.CodeInvalidWeight, err)
	}
	if apperr.KindOf(err) != apperr.Internal {
		t.Fatalf("zero weight is an operator problem, got kind %v", apperr.KindOf(err))
	}
}

func TestCreateOrderComputesServerSideTotals(t *testing.T) {
	orders := &fakeOrders{}
	svc := newTestService(&fakeCarts{items: testItems()}, &fakeAddresses{addr: testAddress()},
		&fakeQuotes{options: regOption()}, &fakeStock{stock: map[int64]int{10: 5}}, orders, nil)

	ord, err := svc.CreateOrder(context.Background(), 1, CreateOrderInput{Courier: "jne", CourierService: "REG"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ord.SubtotalAmount != 100000 || ord.ShippingAmount != 15000 || ord.TotalAmount != 115000 {
		t.Fatalf("unexpected totals: %d + %d = %d", ord.SubtotalAmount, ord.ShippingAmount, ord.TotalAmount)
	}
	if ord.PaymentStatus != "" && ord.PaymentStatus != order.PaymentPending {
		t.Fatalf("unexpected payment status %s", ord.PaymentStatus)
	}
	if len(ord.Items) != 1 || ord.Items[0].UnitPrice != 50000 || ord.Items[0].Subtotal != 100000 {
		t.Fatalf("item snapshot wrong: %+v", ord.Items)
	}
	if ord.ShippingName != "Ayu" {
		t.Fatal("address snapshot not frozen onto order")
	}
	if len(orders.created) != 1 {
		t.Fatalf("expected exactly one created order, got %d", len(orders.created))
	}
}

func TestCreateOrderServiceCodeIsCaseSensitive(t *testing.T) {
	svc := newTestService(&fakeCarts{items: testItems()}, &fakeAddresses{addr: testAddress()},
		&fakeQuotes{options: regOption()}, &fakeStock{stock: map[int64]int{10: 5}}, &fakeOrders{}, nil)

	_, err := svc.CreateOrder(context.Background(), 1, CreateOrderInput{Courier: "jne", CourierService: "reg"})
	if apperr.CodeOf(err) != apperr.CodeInvalidShippingService {
		t.Fatalf("expected %s, got %v", apperr.CodeInvalidShippingService, err)
	}
}

func TestCreateOrderInsufficientStockNamesProduct(t *testing.T) {
	orders := &fakeOrders{}
	svc := newTestService(&fakeCarts{items: testItems()}, &fakeAddresses{addr: testAddress()},
		&fakeQuotes{options: regOption()}, &fakeStock{stock: map[int64]int{10: 1}}, orders, nil)

	_, err := svc.CreateOrder(context.Background(), 1, CreateOrderInput{Courier: "jne", CourierService: "REG"})
	if apperr.CodeOf(err) != apperr.CodeInsufficientStock {
		t.Fatalf("expected %s, got %v", apperr.CodeInsufficientStock, err)
	}
	if !strings.Contains(err.Error(), "Linen Shirt") {
		t.Fatalf("error should name the product: %v", err)
	}
	if len(orders.created) != 0 {
		t.Fatal("no partial order may be created on a stock shortfall")
	}
}

func TestCreateOrderMissingVariantRejected(t *testing.T) {
	orders := &fakeOrders{}
	svc := newTestService(&fakeCarts{items: testItems()}, &fakeAddresses{addr: testAddress()},
		&fakeQuotes{options: regOption()}, &fakeStock{stock: map[int64]int{}}, orders, nil)

	_, err := svc.CreateOrder(context.Background(), 1, CreateOrderInput{Courier: "jne", CourierService: "REG"})
	if apperr.CodeOf(err) != apperr.CodeVariantNotFound {
		t.Fatalf("expected %s, got %v", apperr.CodeVariantNotFound, err)
	}
	if len(orders.created) != 0 {
		t.Fatal("no order may be created when a variant is gone")
	}
}

func TestCreateOrderDuplicateSubmissionBlocked(t *testing.T) {
	svc := newTestService(&fakeCarts{items: testItems()}, &fakeAddresses{addr: testAddress()},
		&fakeQuotes{options: regOption()}, &fakeStock{stock: map[int64]int{10: 5}}, &fakeOrders{}, denyGuard{})

	_, err := svc.CreateOrder(context.Background(), 1, CreateOrderInput{Courier: "jne", CourierService: "REG"})
	if apperr.CodeOf(err) != apperr.CodeDuplicateSubmission {
		t.Fatalf("expected %s, got %v", apperr.CodeDuplicateSubmission, err)
	}
}

func TestCreateOrderGuardSkippedOnValidationFailure(t *testing.T) {
	guard := &recordingGuard{}
	svc := newTestService(&fakeCarts{items: testItems()}, &fakeAddresses{addr: testAddress()},
		&fakeQuotes{options: regOption()}, &fakeStock{stock: map[int64]int{10: 5}}, &fakeOrders{}, guard)

	_, err := svc.CreateOrder(context.Background(), 1, CreateOrderInput{Courier: "jne", CourierService: "OKE"})
	if apperr.CodeOf(err) != apperr.CodeInvalidShippingService {
		t.Fatalf("expected %s, got %v", apperr.CodeInvalidShippingService, err)
	}
	if guard.acquires != 0 {
		t.Fatal("a rejected input must not consume the duplicate-submission slot")
	}

	// Corrected retry goes straight through.
	if _, err := svc.CreateOrder(context.Background(), 1, CreateOrderInput{Courier: "jne", CourierService: "REG"}); err != nil {
		t.Fatalf("corrected retry: %v", err)
	}
	if guard.acquires != 1 || guard.releases != 0 {
		t.Fatalf("expected one held acquire, got acquires=%d releases=%d", guard.acquires, guard.releases)
	}
}

func TestCreateOrderGuardReleasedOnFailedCreate(t *testing.T) {
	guard := &recordingGuard{}
	svc := newTestService(&fakeCarts{items: testItems()}, &fakeAddresses{addr: testAddress()},
		&fakeQuotes{options: regOption()}, &fakeStock{stock: map[int64]int{10: 1}}, &fakeOrders{}, guard)

	_, err := svc.CreateOrder(context.Background(), 1, CreateOrderInput{Courier: "jne", CourierService: "REG"})
	if apperr.CodeOf(err) != apperr.CodeInsufficientStock {
		t.Fatalf("expected %s, got %v", apperr.CodeInsufficientStock, err)
	}
	if guard.acquires != 1 || guard.releases != 1 {
		t.Fatalf("a failed create must free the slot, got acquires=%d releases=%d", guard.acquires, guard.releases)
	}
}

func TestGuardKeyDistinguishesCartContents(t *testing.T) {
	a := guardKey(1, testItems())
	b := guardKey(1, testItems())
	if a != b {
		t.Fatal("identical carts must produce identical keys")
	}
	changed := testItems()
	changed[0].Quantity = 3
	if guardKey(1, changed) == a {
		t.Fatal("different quantities must produce different keys")
	}
	if guardKey(2, testItems()) == a {
		t.Fatal("different users must produce different keys")
	}
}
