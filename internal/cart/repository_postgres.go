package cart

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const snapshotQuery = `SELECT ci.product_id, ci.variant_id, p.name, p.slug,
	COALESCE(v.size, ''), COALESCE(img.url, ''), ci.quantity, p.price, p.weight_grams
	FROM cart_items ci
	JOIN carts c ON c.id = ci.cart_id
	JOIN products p ON p.id = ci.product_id
	LEFT JOIN product_variants v ON v.id = ci.variant_id
	LEFT JOIN LATERAL (
		SELECT url FROM product_images WHERE product_id = p.id ORDER BY position ASC LIMIT 1
	) img ON TRUE
	WHERE c.user_id = $1
	ORDER BY ci.id`

func (r *PostgresRepository) Snapshot(userID int) ([]SnapshotItem, error) {
	rows, err := r.db.Query(snapshotQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]SnapshotItem, 0)
	for rows.Next() {
		var it SnapshotItem
		var variantID sql.NullInt64
		if err := rows.Scan(&it.ProductID, &variantID, &it.ProductName, &it.ProductSlug,
			&it.Size, &it.ImageURL, &it.Quantity, &it.UnitPrice, &it.UnitWeightGrams); err != nil {
			return nil, err
		}
		if variantID.Valid {
			v := variantID.Int64
			it.VariantID = &v
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) UpsertItem(userID int, productID int64, variantID *int64, qty int) error {
	if qty <= 0 {
		return r.RemoveItem(userID, productID, variantID)
	}

	var cartID int64
	err := r.db.QueryRow(
		`INSERT INTO carts (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id`, userID,
	).Scan(&cartID)
	if err != nil {
		return err
	}

	res, err := r.db.Exec(
		`UPDATE cart_items SET quantity = $4
		 WHERE cart_id = $1 AND product_id = $2 AND variant_id IS NOT DISTINCT FROM $3`,
		cartID, productID, variantID, qty,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n > 0 {
		return nil
	}

	_, err = r.db.Exec(
		`INSERT INTO cart_items (cart_id, product_id, variant_id, quantity) VALUES ($1,$2,$3,$4)`,
		cartID, productID, variantID, qty,
	)
	return err
}

func (r *PostgresRepository) RemoveItem(userID int, productID int64, variantID *int64) error {
	_, err := r.db.Exec(
		`DELETE FROM cart_items
		 WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)
		 AND product_id = $2 AND variant_id IS NOT DISTINCT FROM $3`,
		userID, productID, variantID,
	)
	return err
}

func (r *PostgresRepository) ClearTx(tx *sql.Tx, userID int) error {
	_, err := tx.Exec(
		`DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)`,
		userID,
	)
	return err
}
