package entity

type Item struct {
	ProductName string `json:"product_name" validate:"required,max=255"`
	Quantity    int    `json:"quantity"     validate:"required,gte=1"`
	SKU         string `json:"sku"          validate:"max=64"`
	UnitPrice   uint64 `json:"unit_price"   validate:"gte=0"`
}
