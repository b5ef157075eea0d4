package database

import "database/sql"

// schema statements are idempotent so startup can run them every time.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'CUSTOMER'
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id SERIAL PRIMARY KEY,
		user_id INT NOT NULL,
		recipient_name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address_line TEXT NOT NULL DEFAULT '',
		province_id INT NOT NULL DEFAULT 0,
		city_id INT NOT NULL DEFAULT 0,
		subdistrict_id INT NOT NULL DEFAULT 0,
		province_name TEXT NOT NULL DEFAULT '',
		city_name TEXT NOT NULL DEFAULT '',
		subdistrict_name TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		is_primary BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		price BIGINT NOT NULL DEFAULT 0,
		weight_grams INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS product_images (
		id SERIAL PRIMARY KEY,
		product_id INT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		position INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS product_variants (
		id SERIAL PRIMARY KEY,
		product_id INT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		size TEXT NOT NULL DEFAULT '',
		stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id SERIAL PRIMARY KEY,
		user_id INT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id SERIAL PRIMARY KEY,
		cart_id INT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
		product_id INT NOT NULL,
		variant_id INT,
		quantity INT NOT NULL CHECK (quantity > 0),
		UNIQUE (cart_id, product_id, variant_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id SERIAL PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		user_id INT NOT NULL,
		address_id INT NOT NULL,
		shipping_name TEXT NOT NULL DEFAULT '',
		shipping_phone TEXT NOT NULL DEFAULT '',
		shipping_address TEXT NOT NULL DEFAULT '',
		shipping_province_id INT NOT NULL DEFAULT 0,
		shipping_city_id INT NOT NULL DEFAULT 0,
		shipping_subdistrict_id INT NOT NULL DEFAULT 0,
		shipping_province_name TEXT NOT NULL DEFAULT '',
		shipping_city_name TEXT NOT NULL DEFAULT '',
		shipping_subdistrict_name TEXT NOT NULL DEFAULT '',
		shipping_postal_code TEXT NOT NULL DEFAULT '',
		shipping_courier TEXT NOT NULL DEFAULT '',
		shipping_service TEXT NOT NULL DEFAULT '',
		shipping_etd TEXT NOT NULL DEFAULT '',
		subtotal_amount BIGINT NOT NULL DEFAULT 0,
		shipping_amount BIGINT NOT NULL DEFAULT 0,
		total_amount BIGINT NOT NULL DEFAULT 0,
		payment_status TEXT NOT NULL DEFAULT 'PENDING',
		order_status TEXT NOT NULL DEFAULT 'AWAITING_PAYMENT',
		payment_provider TEXT NOT NULL DEFAULT '',
		provider_order_id TEXT NOT NULL DEFAULT '',
		provider_redirect_url TEXT NOT NULL DEFAULT '',
		provider_session_token TEXT NOT NULL DEFAULT '',
		last_provider_status TEXT NOT NULL DEFAULT '',
		provider_transaction_id TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL DEFAULT '',
		provider_va_number TEXT NOT NULL DEFAULT '',
		tracking_number TEXT NOT NULL DEFAULT '',
		payment_expires_at TIMESTAMPTZ,
		paid_at TIMESTAMPTZ,
		packed_at TIMESTAMPTZ,
		shipped_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id SERIAL PRIMARY KEY,
		order_id INT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id INT NOT NULL,
		variant_id INT,
		product_name TEXT NOT NULL DEFAULT '',
		product_slug TEXT NOT NULL DEFAULT '',
		size TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		unit_price BIGINT NOT NULL DEFAULT 0,
		quantity INT NOT NULL DEFAULT 0,
		subtotal BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_provider_order_id ON orders (provider_order_id)`,
}

// EnsureSchema creates any missing tables.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
