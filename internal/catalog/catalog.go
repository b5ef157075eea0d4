package catalog

// Product is the live catalog view the checkout path reads. Orders copy
// what they need out of it; they never reference it afterwards.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Price       int64  `json:"price"`
	WeightGrams int    `json:"weightGrams"`
}

type Variant struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Stock     int    `json:"stock"`
}
