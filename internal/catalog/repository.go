package catalog

import "database/sql"

// Repository exposes the catalog reads the checkout path needs plus the
// single permitted stock mutation: a conditional, quantity-bounded
// decrement executed inside the caller's transaction.
type Repository interface {
	GetVariant(variantID int64) (*Variant, error)

	// VariantStockTx reads a variant's stock inside tx. The bool reports
	// whether the variant exists.
	VariantStockTx(tx *sql.Tx, variantID int64) (int, bool, error)

	// DecrementStockTx decrements stock by qty only where stock >= qty.
	// It reports whether a row was affected; false means the decrement
	// must not happen and the caller has to abort its transaction.
	DecrementStockTx(tx *sql.Tx, variantID int64, qty int) (bool, error)
}
