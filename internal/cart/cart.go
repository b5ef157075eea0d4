package cart

// SnapshotItem is one cart line joined with live catalog data. It is
// never persisted: price and weight are read fresh from the catalog
// every time, so they are current right up until an order freezes them.
type SnapshotItem struct {
	ProductID       int64  `json:"productId"`
	VariantID       *int64 `json:"variantId"`
	ProductName     string `json:"productName"`
	ProductSlug     string `json:"productSlug"`
	Size            string `json:"size"`
	ImageURL        string `json:"imageUrl"`
	Quantity        int    `json:"quantity"`
	UnitPrice       int64  `json:"price"`
	UnitWeightGrams int    `json:"unitWeightGrams"`
}

func (i SnapshotItem) LineSubtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

func (i SnapshotItem) LineWeightGrams() int {
	return i.UnitWeightGrams * i.Quantity
}
