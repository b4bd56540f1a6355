package entity

import (
	"time"
)

// Order is an imported purchase record. The order ID is assigned by
// the sales channel. Orders are immutable after import except for the
// item list, which is append-only across re-imports.
type Order struct {
	OrderID        string      `json:"order_id"        validate:"required,max=64"`
	Channel        Channel     `json:"channel"         validate:"required"`
	CustomerName   string      `json:"customer_name"   validate:"max=100"`
	PurchasedAt    time.Time   `json:"purchased_at"    validate:"required"`
	Carrier        CarrierSlug `json:"carrier"`
	TrackingNumber string      `json:"tracking_number" validate:"max=64"`
	Items          []*Item     `json:"items"           validate:"required,min=1,dive"`
}
