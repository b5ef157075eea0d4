package checkout

import (
	"context"
	"database/sql"

	"github.com/clorindastore/storefront-backend/internal/address"
	"github.com/clorindastore/storefront-backend/internal/apperr"
	"github.com/clorindastore/storefront-backend/internal/cart"
	"github.com/clorindastore/storefront-backend/internal/database"
	"github.com/clorindastore/storefront-backend/internal/logging"
	"github.com/clorindastore/storefront-backend/internal/metrics"
	"github.com/clorindastore/storefront-backend/internal/order"
	"github.com/clorindastore/storefront-backend/internal/shipping"
)

type CartReader interface {
	Snapshot(userID int) ([]cart.SnapshotItem, error)
}

type AddressResolver interface {
	Resolve(userID int, addressID *int64) (*address.Address, error)
}

type StockReader interface {
	VariantStockTx(tx *sql.Tx, variantID int64) (int, bool, error)
}

type OrderCreator interface {
	CreateTx(tx *sql.Tx, ord *order.Order) error
}

type EventSink interface {
	OrderCreated(ord *order.Order)
}

// Service builds checkout summaries and creates orders. Creating an
// order freezes prices, address and shipping selection, but leaves
// stock and the cart untouched: both belong to payment settlement, so
// an unpaid order never locks up inventory.
type Service struct {
	tx        database.TxRunner
	carts     CartReader
	addresses AddressResolver
	quotes    shipping.Client
	stock     StockReader
	orders    OrderCreator
	guard     Guard
	events    EventSink
}

func NewService(tx database.TxRunner, carts CartReader, addresses AddressResolver,
	quotes shipping.Client, stock StockReader, orders OrderCreator,
	guard Guard, events EventSink) *Service {
	return &Service{
		tx:        tx,
		carts:     carts,
		addresses: addresses,
		quotes:    quotes,
		stock:     stock,
		orders:    orders,
		guard:     guard,
		events:    events,
	}
}

// Summary composes the cart snapshot, resolved address and optional
// shipping quote into a priced preview. No side effects; safe to call
// repeatedly and concurrently.
func (s *Service) Summary(ctx context.Context, userID int, addressID *int64, courier string) (*Summary, error) {
	items, err := s.carts.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.New(apperr.Validation, apperr.CodeEmptyCart, "your cart is empty")
	}

	addr, err := s.addresses.Resolve(userID, addressID)
	if err != nil {
		return nil, err
	}

	subtotal, weight := totals(items)
	if weight <= 0 {
		return nil, apperr.New(apperr.Internal, apperr.CodeInvalidWeight,
			"product weight is not configured; contact the store operator")
	}

	summary := &Summary{
		Address: addr,
		Items:   items,
		Totals:  Totals{Subtotal: subtotal, TotalWeightGrams: weight},
	}

	if courier != "" {
		options, err := s.quotes.Quote(ctx, addr.SubdistrictID, weight, courier)
		if err != nil {
			return nil, err
		}
		summary.ShippingEstimate = options
	}
	return summary, nil
}

// CreateOrder re-reads the cart, address and shipping quote fresh and
// persists the order plus item snapshots as one atomic unit. The
// chosen service must match a server-side quote exactly: the charged
// amount is never taken from the client.
func (s *Service) CreateOrder(ctx context.Context, userID int, input CreateOrderInput) (*order.Order, error) {
	if input.Courier == "" || input.CourierService == "" {
		return nil, apperr.New(apperr.Validation, apperr.CodeInvalidShippingService,
			"courier and courier service are required")
	}

	items, err := s.carts.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.New(apperr.Validation, apperr.CodeEmptyCart, "your cart is empty")
	}

	addr, err := s.addresses.Resolve(userID, input.AddressID)
	if err != nil {
		return nil, err
	}

	subtotal, weight := totals(items)
	if weight <= 0 {
		return nil, apperr.New(apperr.Internal, apperr.CodeInvalidWeight,
			"product weight is not configured; contact the store operator")
	}

	options, err := s.quotes.Quote(ctx, addr.SubdistrictID, weight, input.Courier)
	if err != nil {
		return nil, err
	}
	var selected *shipping.ServiceOption
	for i := range options {
		if options[i].Service == input.CourierService {
			selected = &options[i]
			break
		}
	}
	if selected == nil {
		return nil, apperr.New(apperr.Validation, apperr.CodeInvalidShippingService,
			"the chosen courier service is not available")
	}

	// Acquired only after validation so a rejected input (bad address,
	// unavailable service) never locks the user out of a corrected
	// retry for the guard TTL.
	key := guardKey(userID, items)
	held := false
	ok, err := s.guard.Acquire(ctx, key)
	if err != nil {
		// The guard is advisory; a broken Redis must not block checkout.
		logging.Log(logging.Event{Event: "checkout.guard_error", Message: err.Error()})
	} else if !ok {
		return nil, apperr.New(apperr.Conflict, apperr.CodeDuplicateSubmission,
			"an identical order was just submitted; check your order history")
	} else {
		held = true
	}

	ord := buildOrder(userID, addr, input, selected, subtotal, items)

	err = s.tx.WithinTx(func(tx *sql.Tx) error {
		for _, it := range items {
			if it.VariantID == nil {
				return apperr.Newf(apperr.Validation, apperr.CodeVariantNotFound,
					"product %s has no selectable variant", it.ProductName)
			}
			stock, exists, err := s.stock.VariantStockTx(tx, *it.VariantID)
			if err != nil {
				return err
			}
			if !exists {
				return apperr.Newf(apperr.Validation, apperr.CodeVariantNotFound,
					"variant for product %s no longer exists", it.ProductName)
			}
			if stock < it.Quantity {
				return apperr.Newf(apperr.Validation, apperr.CodeInsufficientStock,
					"not enough stock for %s", it.ProductName)
			}
		}
		return s.orders.CreateTx(tx, ord)
	})
	if err != nil {
		if held {
			if relErr := s.guard.Release(ctx, key); relErr != nil {
				logging.Log(logging.Event{Event: "checkout.guard_error", Message: relErr.Error()})
			}
		}
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	logging.Log(logging.Event{Event: "checkout.order_created", OrderNumber: ord.OrderNumber})
	if s.events != nil {
		s.events.OrderCreated(ord)
	}
	return ord, nil
}

func totals(items []cart.SnapshotItem) (subtotal int64, weightGrams int) {
	for _, it := range items {
		subtotal += it.LineSubtotal()
		weightGrams += it.LineWeightGrams()
	}
	return subtotal, weightGrams
}

func buildOrder(userID int, addr *address.Address, input CreateOrderInput,
	selected *shipping.ServiceOption, subtotal int64, items []cart.SnapshotItem) *order.Order {

	ord := &order.Order{
		UserID:    userID,
		AddressID: addr.ID,

		ShippingName:            addr.RecipientName,
		ShippingPhone:           addr.Phone,
		ShippingAddress:         addr.AddressLine,
		ShippingProvinceID:      addr.ProvinceID,
		ShippingCityID:          addr.CityID,
		ShippingSubdistrictID:   addr.SubdistrictID,
		ShippingProvinceName:    addr.ProvinceName,
		ShippingCityName:        addr.CityName,
		ShippingSubdistrictName: addr.SubdistrictName,
		ShippingPostalCode:      addr.PostalCode,

		ShippingCourier: input.Courier,
		ShippingService: input.CourierService,
		ShippingEtd:     selected.Etd,

		SubtotalAmount: subtotal,
		ShippingAmount: selected.Cost,
		TotalAmount:    subtotal + selected.Cost,
	}

	for _, it := range items {
		ord.Items = append(ord.Items, order.Item{
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			ProductSlug: it.ProductSlug,
			Size:        it.Size,
			ImageURL:    it.ImageURL,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.LineSubtotal(),
		})
	}
	return ord
}
