package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind names a semantic notification. Rendering into
// platform-specific messages happens outside this service.
type EventKind string

const (
	EventRegistrationCompleted EventKind = "registration.completed"
	EventClaimReceived         EventKind = "claim.received"
	EventClaimEvidenceRequest  EventKind = "claim.evidence_requested"
	EventClaimAdminAlert       EventKind = "claim.admin_alert"
	EventClaimStatusChanged    EventKind = "claim.status_changed"
	EventAdminDashboard        EventKind = "admin.dashboard"
)

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxDead    OutboxStatus = "dead"
)

// NotificationEvent is a durable outbox row. It is written in the
// same transaction as the state change it announces and delivered
// at-least-once by the dispatcher.
type NotificationEvent struct {
	EventID   uuid.UUID       `json:"event_id"`
	Kind      EventKind       `json:"kind"`
	Recipient string          `json:"recipient"`
	OrderID   string          `json:"order_id"`
	Payload   json.RawMessage `json:"payload"`
	Status    OutboxStatus    `json:"status"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

type RegistrationCompletedPayload struct {
	RegistrantName string    `json:"registrant_name"`
	OrderID        string    `json:"order_id"`
	Items          []*Item   `json:"items"`
	WarrantyUntil  time.Time `json:"warranty_until"`
}

type ClaimReceivedPayload struct {
	ClaimID uuid.UUID   `json:"claim_id"`
	OrderID string      `json:"order_id"`
	Reason  string      `json:"reason"`
	Status  ClaimStatus `json:"status"`
}

type ClaimStatusChangedPayload struct {
	ClaimID   uuid.UUID   `json:"claim_id"`
	OrderID   string      `json:"order_id"`
	OldStatus ClaimStatus `json:"old_status"`
	NewStatus ClaimStatus `json:"new_status"`
}

type DashboardPayload struct {
	Registrations int `json:"registrations"`
	Claims        int `json:"claims"`
	OpenClaims    int `json:"open_claims"`
}

// NewNotificationEvent marshals the payload and stamps identity and
// creation time. The zero SentAt means not yet delivered.
func NewNotificationEvent(
	kind EventKind,
	recipient, orderID string,
	payload any,
) (*NotificationEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("entity.NewNotificationEvent: marshal payload: %w", err)
	}
	return &NotificationEvent{
		EventID:   uuid.New(),
		Kind:      kind,
		Recipient: recipient,
		OrderID:   orderID,
		Payload:   raw,
		Status:    OutboxPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}
