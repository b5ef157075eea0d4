package address

// Address is a user's shipping destination. Orders copy these fields at
// creation time; editing an address never touches an existing order.
type Address struct {
	ID              int64  `json:"id"`
	UserID          int    `json:"userId"`
	RecipientName   string `json:"recipientName"`
	Phone           string `json:"phone"`
	AddressLine     string `json:"addressLine"`
	ProvinceID      int    `json:"provinceId"`
	CityID          int    `json:"cityId"`
	SubdistrictID   int    `json:"subdistrictId"`
	ProvinceName    string `json:"provinceName"`
	CityName        string `json:"cityName"`
	SubdistrictName string `json:"subdistrictName"`
	PostalCode      string `json:"postalCode"`
	IsPrimary       bool   `json:"isPrimary"`
}
