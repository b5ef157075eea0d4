package order

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orderColumns = `id, order_number, user_id, address_id,
	shipping_name, shipping_phone, shipping_address,
	shipping_province_id, shipping_city_id, shipping_subdistrict_id,
	shipping_province_name, shipping_city_name, shipping_subdistrict_name, shipping_postal_code,
	shipping_courier, shipping_service, shipping_etd,
	subtotal_amount, shipping_amount, total_amount,
	payment_status, order_status,
	payment_provider, provider_order_id, provider_redirect_url, provider_session_token,
	last_provider_status, provider_transaction_id, payment_method, provider_va_number,
	tracking_number,
	payment_expires_at, paid_at, packed_at, shipped_at, delivered_at, cancelled_at,
	created_at, updated_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanOrder(row scannable) (*Order, error) {
	var o Order
	var expiresAt, paidAt, packedAt, shippedAt, deliveredAt, cancelledAt sql.NullTime
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.AddressID,
		&o.ShippingName, &o.ShippingPhone, &o.ShippingAddress,
		&o.ShippingProvinceID, &o.ShippingCityID, &o.ShippingSubdistrictID,
		&o.ShippingProvinceName, &o.ShippingCityName, &o.ShippingSubdistrictName, &o.ShippingPostalCode,
		&o.ShippingCourier, &o.ShippingService, &o.ShippingEtd,
		&o.SubtotalAmount, &o.ShippingAmount, &o.TotalAmount,
		&o.PaymentStatus, &o.OrderStatus,
		&o.PaymentProvider, &o.ProviderOrderID, &o.ProviderRedirectURL, &o.ProviderSessionToken,
		&o.LastProviderStatus, &o.ProviderTransactionID, &o.PaymentMethod, &o.VANumber,
		&o.TrackingNumber,
		&expiresAt, &paidAt, &packedAt, &shippedAt, &deliveredAt, &cancelledAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.PaymentExpiresAt = timePtr(expiresAt)
	o.PaidAt = timePtr(paidAt)
	o.PackedAt = timePtr(packedAt)
	o.ShippedAt = timePtr(shippedAt)
	o.DeliveredAt = timePtr(deliveredAt)
	o.CancelledAt = timePtr(cancelledAt)
	return &o, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (r *PostgresRepository) CreateTx(tx *sql.Tx, ord *Order) error {
	// The placeholder keeps the UNIQUE constraint happy until the final
	// number, which embeds the generated id, replaces it.
	placeholder := "TEMP-" + uuid.NewString()

	err := tx.QueryRow(`INSERT INTO orders (order_number, user_id, address_id,
		shipping_name, shipping_phone, shipping_address,
		shipping_province_id, shipping_city_id, shipping_subdistrict_id,
		shipping_province_name, shipping_city_name, shipping_subdistrict_name, shipping_postal_code,
		shipping_courier, shipping_service, shipping_etd,
		subtotal_amount, shipping_amount, total_amount,
		payment_status, order_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		RETURNING id, created_at, updated_at`,
		placeholder, ord.UserID, ord.AddressID,
		ord.ShippingName, ord.ShippingPhone, ord.ShippingAddress,
		ord.ShippingProvinceID, ord.ShippingCityID, ord.ShippingSubdistrictID,
		ord.ShippingProvinceName, ord.ShippingCityName, ord.ShippingSubdistrictName, ord.ShippingPostalCode,
		ord.ShippingCourier, ord.ShippingService, ord.ShippingEtd,
		ord.SubtotalAmount, ord.ShippingAmount, ord.TotalAmount,
		string(PaymentPending), string(StatusAwaitingPayment),
	).Scan(&ord.ID, &ord.CreatedAt, &ord.UpdatedAt)
	if err != nil {
		return err
	}
	ord.PaymentStatus = PaymentPending
	ord.OrderStatus = StatusAwaitingPayment

	for i := range ord.Items {
		it := &ord.Items[i]
		it.OrderID = ord.ID
		err := tx.QueryRow(`INSERT INTO order_items
			(order_id, product_id, variant_id, product_name, product_slug, size, image_url, unit_price, quantity, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING id`,
			it.OrderID, it.ProductID, it.VariantID, it.ProductName, it.ProductSlug,
			it.Size, it.ImageURL, it.UnitPrice, it.Quantity, it.Subtotal,
		).Scan(&it.ID)
		if err != nil {
			return err
		}
	}

	ord.OrderNumber = Number(ord.ID, ord.CreatedAt)
	_, err = tx.Exec(`UPDATE orders SET order_number = $1 WHERE id = $2`, ord.OrderNumber, ord.ID)
	return err
}

func (r *PostgresRepository) GetByNumberForUser(userID int, orderNumber string) (*Order, error) {
	return r.getOne(`SELECT `+orderColumns+` FROM orders WHERE order_number = $1 AND user_id = $2`,
		orderNumber, userID)
}

func (r *PostgresRepository) GetByNumber(orderNumber string) (*Order, error) {
	return r.getOne(`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
}

func (r *PostgresRepository) FindByProviderRef(ref string) (*Order, error) {
	return r.getOne(`SELECT `+orderColumns+` FROM orders
		WHERE order_number = $1 OR provider_order_id = $1 OR order_number = '#' || $1
		LIMIT 1`, ref)
}

func (r *PostgresRepository) getOne(query string, args ...any) (*Order, error) {
	ord, err := scanOrder(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems([]*Order{ord}); err != nil {
		return nil, err
	}
	return ord, nil
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	return r.list(`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *PostgresRepository) ListAll() ([]Order, error) {
	return r.list(`SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`)
}

func (r *PostgresRepository) list(query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *ord)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.loadItems(refs); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) loadItems(orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		o.Items = make([]Item, 0)
	}

	rows, err := r.db.Query(`SELECT id, order_id, product_id, variant_id,
		product_name, product_slug, size, image_url, unit_price, quantity, subtotal
		FROM order_items WHERE order_id = ANY($1::int[]) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		var variantID sql.NullInt64
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &variantID,
			&it.ProductName, &it.ProductSlug, &it.Size, &it.ImageURL,
			&it.UnitPrice, &it.Quantity, &it.Subtotal); err != nil {
			return err
		}
		if variantID.Valid {
			v := variantID.Int64
			it.VariantID = &v
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) UpdateSession(orderID int64, upd SessionUpdate) error {
	_, err := r.db.Exec(`UPDATE orders SET
		payment_provider = $2,
		provider_order_id = $3,
		provider_redirect_url = $4,
		provider_session_token = $5,
		payment_expires_at = $6,
		updated_at = now()
		WHERE id = $1`,
		orderID, upd.Provider, upd.ProviderOrderID, upd.RedirectURL, upd.SessionToken, upd.ExpiresAt)
	return err
}

func (r *PostgresRepository) ApplyNotificationTx(tx *sql.Tx, orderID int64, upd NotificationUpdate) (bool, error) {
	// payment_status <> 'PAID' is the idempotency gate. A concurrent
	// delivery that read the order as unpaid blocks on the row lock
	// here and, once the first delivery commits, matches zero rows.
	res, err := tx.Exec(`UPDATE orders SET
		last_provider_status = $2,
		provider_transaction_id = COALESCE(NULLIF($3, ''), provider_transaction_id),
		payment_method = COALESCE(NULLIF($4, ''), payment_method),
		provider_va_number = COALESCE(NULLIF($5, ''), provider_va_number),
		payment_status = $6,
		order_status = $7,
		paid_at = COALESCE(paid_at, $8),
		cancelled_at = COALESCE(cancelled_at, $9),
		updated_at = now()
		WHERE id = $1 AND payment_status <> $10`,
		orderID, upd.LastProviderStatus, upd.ProviderTransactionID, upd.PaymentMethod, upd.VANumber,
		string(upd.PaymentStatus), string(upd.OrderStatus),
		nullTime(upd.PaidAt), nullTime(upd.CancelledAt),
		string(PaymentPaid))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) UpdateStatus(orderNumber string, upd StatusUpdate) (*Order, error) {
	var status *string
	if upd.OrderStatus != nil {
		s := string(*upd.OrderStatus)
		status = &s
	}
	row := r.db.QueryRow(`UPDATE orders SET
		order_status = COALESCE($2, order_status),
		tracking_number = COALESCE($3, tracking_number),
		packed_at = COALESCE(packed_at, $4),
		shipped_at = COALESCE(shipped_at, $5),
		delivered_at = COALESCE(delivered_at, $6),
		cancelled_at = COALESCE(cancelled_at, $7),
		updated_at = now()
		WHERE order_number = $1
		RETURNING `+orderColumns,
		orderNumber, nullStr(status), nullStr(upd.TrackingNumber),
		nullTime(upd.PackedAt), nullTime(upd.ShippedAt), nullTime(upd.DeliveredAt), nullTime(upd.CancelledAt))

	ord, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems([]*Order{ord}); err != nil {
		return nil, err
	}
	return ord, nil
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
