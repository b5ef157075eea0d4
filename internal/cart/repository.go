package cart

import "database/sql"

// Repository persists the pre-checkout staging cart, one per user.
type Repository interface {
	// Snapshot returns the user's cart lines joined with live product
	// price/weight and variant size.
	Snapshot(userID int) ([]SnapshotItem, error)

	// UpsertItem sets the quantity for (productID, variantID), creating
	// the cart and the line as needed. qty <= 0 removes the line.
	UpsertItem(userID int, productID int64, variantID *int64, qty int) error

	RemoveItem(userID int, productID int64, variantID *int64) error

	// ClearTx deletes every cart item belonging to the user inside the
	// caller's transaction. Settlement uses this so the clear commits or
	// rolls back together with the payment state flip.
	ClearTx(tx *sql.Tx, userID int) error
}
