package entity

import "time"

// ImportRow is one spreadsheet row of a sales-channel export. Each
// row maps to an order upsert: create the order when absent, append
// the row's line item when present. There is no dedup key, so
// re-importing the same row accumulates duplicate items.
type ImportRow struct {
	OrderID          string    `json:"order_id"       validate:"required,max=64"`
	CustomerName     string    `json:"customer_name"  validate:"max=100"`
	ProductName      string    `json:"product_name"   validate:"required,max=255"`
	Quantity         int       `json:"quantity"       validate:"required,gte=1"`
	SKU              string    `json:"sku"            validate:"max=64"`
	UnitPrice        uint64    `json:"unit_price"     validate:"gte=0"`
	PurchasedAt      time.Time `json:"purchased_at"   validate:"required"`
	ShippingProvider string    `json:"shipping_provider"`
	TrackingNumber   string    `json:"tracking_number" validate:"max=64"`
}

func (r *ImportRow) Item() *Item {
	return &Item{
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		SKU:         r.SKU,
		UnitPrice:   r.UnitPrice,
	}
}

// ImportSummary reports how far a bulk import got. A failure aborts
// the remaining rows; rows already applied stay applied.
type ImportSummary struct {
	OrdersCreated int `json:"orders_created"`
	ItemsAppended int `json:"items_appended"`
	RowsProcessed int `json:"rows_processed"`
}
