package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ClaimStatus string

const (
	ClaimPending    ClaimStatus = "pending"
	ClaimInProgress ClaimStatus = "in_progress"
	ClaimCompleted  ClaimStatus = "completed"
	ClaimRejected   ClaimStatus = "rejected"
)

// claimTransitions is the explicit transition table. Completed and
// Rejected are terminal.
var claimTransitions = map[ClaimStatus]map[ClaimStatus]struct{}{
	ClaimPending: {
		ClaimInProgress: {},
		ClaimCompleted:  {},
		ClaimRejected:   {},
	},
	ClaimInProgress: {
		ClaimCompleted: {},
		ClaimRejected:  {},
	},
}

func ParseClaimStatus(s string) (ClaimStatus, error) {
	switch status := ClaimStatus(s); status {
	case ClaimPending, ClaimInProgress, ClaimCompleted, ClaimRejected:
		return status, nil
	default:
		return "", fmt.Errorf("parse claim status %q: %w", s, ErrInvalidStatus)
	}
}

func (s ClaimStatus) Terminal() bool {
	_, ok := claimTransitions[s]
	return !ok
}

func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	allowed, ok := claimTransitions[s]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

// Claimant identifies who filed a claim and how to reach them.
type Claimant struct {
	UserID  string `json:"user_id" validate:"required,max=64"`
	Contact string `json:"contact" validate:"required,max=100"`
}

// Claim references an order; many claims may reference one order.
// Mutated only via status transition.
type Claim struct {
	ClaimID         uuid.UUID   `json:"claim_id"`
	OrderID         string      `json:"order_id"`
	Claimant        Claimant    `json:"claimant"`
	Reason          string      `json:"reason"`
	Status          ClaimStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	StatusUpdatedAt time.Time   `json:"status_updated_at"`
}
