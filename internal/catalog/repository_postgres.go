package catalog

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetVariant(variantID int64) (*Variant, error) {
	var v Variant
	err := r.db.QueryRow(
		`SELECT id, product_id, size, stock FROM product_variants WHERE id = $1`,
		variantID,
	).Scan(&v.ID, &v.ProductID, &v.Size, &v.Stock)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PostgresRepository) VariantStockTx(tx *sql.Tx, variantID int64) (int, bool, error) {
	var stock int
	err := tx.QueryRow(`SELECT stock FROM product_variants WHERE id = $1`, variantID).Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return stock, true, nil
}

func (r *PostgresRepository) DecrementStockTx(tx *sql.Tx, variantID int64, qty int) (bool, error) {
	res, err := tx.Exec(
		`UPDATE product_variants SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
		variantID, qty,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
