package entity

import (
	"time"
)

// Registrant is the contact info captured at registration time.
// UserID is the chat-platform identity notifications are addressed to.
type Registrant struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Phone   string `json:"phone"   validate:"required,max=20"`
	Email   string `json:"email"   validate:"required,email,max=100"`
	Address string `json:"address" validate:"required,max=500"`
	UserID  string `json:"user_id" validate:"required,max=64"`
}

// Registration is the permanent warranty record, keyed 1:1 by order ID.
type Registration struct {
	OrderID       string     `json:"order_id"`
	Registrant    Registrant `json:"registrant"`
	RegisteredAt  time.Time  `json:"registered_at"`
	WarrantyUntil time.Time  `json:"warranty_until"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
}
