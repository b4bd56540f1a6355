package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/logger"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres/transaction"

	"github.com/google/uuid"
)

// FileClaim records a warranty claim against a registered order. The
// order must exist, be registered, and be inside its warranty window;
// an order may accumulate any number of claims.
func (ws *WarrantyService) FileClaim(
	ctx context.Context,
	orderID string,
	claimant entity.Claimant,
	reason string,
) (*entity.Claim, error) {
	const op = "service.FileClaim"
	log := ws.logger.Ctx(ctx)

	startTime := time.Now()
	defer ws.warnIfSlow(ctx, op, startTime)

	if err := ws.validate.Struct(&claimant); err != nil {
		return nil, fmt.Errorf("%s: validate claimant: %w", op, entity.ErrInvalidData)
	}
	if reason == "" {
		return nil, fmt.Errorf("%s: empty reason: %w", op, entity.ErrInvalidData)
	}

	if _, err := ws.getOrder(ctx, orderID); err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return nil, entity.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%s: get order: %w", op, err)
	}

	reg, err := ws.registrationRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return nil, entity.ErrNotRegistered
		}
		return nil, fmt.Errorf("%s: get registration: %w", op, err)
	}

	now := time.Now().UTC()
	if !inWarranty(now, reg.WarrantyUntil) {
		return nil, entity.ErrWarrantyExpired
	}

	claim := &entity.Claim{
		ClaimID:         uuid.New(),
		OrderID:         orderID,
		Claimant:        claimant,
		Reason:          reason,
		Status:          entity.ClaimPending,
		CreatedAt:       now,
		StatusUpdatedAt: now,
	}

	events, err := ws.claimFiledEvents(claim)
	if err != nil {
		return nil, fmt.Errorf("%s: build events: %w", op, err)
	}

	err = ws.txManager.ExecuteInTransaction(ctx, "FileClaim",
		func(tx postgres.QueryExecuter) error {
			if txErr := ws.claimRepo.Create(ctx, tx, claim); txErr != nil {
				return transaction.HandleError("FileClaim", "create claim", txErr)
			}
			for _, event := range events {
				if txErr := ws.outboxRepo.Enqueue(ctx, tx, event); txErr != nil {
					return transaction.HandleError("FileClaim", "enqueue event", txErr)
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: transaction: %w", op, err)
	}

	log.LogAttrs(ctx, logger.InfoLevel, "claim filed",
		logger.String("op", op),
		logger.String("order_id", orderID),
		logger.String("claim_id", claim.ClaimID.String()),
	)

	return claim, nil
}

// claimFiledEvents builds the claimant acknowledgement, the evidence
// request, and, when the broadcast is enabled, one alert per
// configured admin.
func (ws *WarrantyService) claimFiledEvents(claim *entity.Claim) ([]*entity.NotificationEvent, error) {
	payload := entity.ClaimReceivedPayload{
		ClaimID: claim.ClaimID,
		OrderID: claim.OrderID,
		Reason:  claim.Reason,
		Status:  claim.Status,
	}

	events := make([]*entity.NotificationEvent, 0, 2+len(ws.adminUserIDs))

	received, err := entity.NewNotificationEvent(
		entity.EventClaimReceived, claim.Claimant.UserID, claim.OrderID, payload)
	if err != nil {
		return nil, err
	}
	events = append(events, received)

	evidence, err := entity.NewNotificationEvent(
		entity.EventClaimEvidenceRequest, claim.Claimant.UserID, claim.OrderID, payload)
	if err != nil {
		return nil, err
	}
	events = append(events, evidence)

	if ws.adminBroadcast {
		for _, adminID := range ws.adminUserIDs {
			alert, alertErr := entity.NewNotificationEvent(
				entity.EventClaimAdminAlert, adminID, claim.OrderID, payload)
			if alertErr != nil {
				return nil, alertErr
			}
			events = append(events, alert)
		}
	}

	return events, nil
}

// UpdateClaimStatus moves a claim through its lifecycle. Terminal
// statuses never change again; the claimant is notified of every
// successful transition.
func (ws *WarrantyService) UpdateClaimStatus(
	ctx context.Context,
	claimID uuid.UUID,
	next entity.ClaimStatus,
) (*entity.Claim, error) {
	const op = "service.UpdateClaimStatus"
	log := ws.logger.Ctx(ctx)

	startTime := time.Now()
	defer ws.warnIfSlow(ctx, op, startTime)

	claim, err := ws.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return nil, entity.ErrClaimNotFound
		}
		return nil, fmt.Errorf("%s: get claim: %w", op, err)
	}

	if !claim.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%s: %s -> %s: %w",
			op, claim.Status, next, entity.ErrInvalidTransition)
	}

	event, err := entity.NewNotificationEvent(
		entity.EventClaimStatusChanged,
		claim.Claimant.UserID,
		claim.OrderID,
		entity.ClaimStatusChangedPayload{
			ClaimID:   claim.ClaimID,
			OrderID:   claim.OrderID,
			OldStatus: claim.Status,
			NewStatus: next,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: build event: %w", op, err)
	}

	now := time.Now().UTC()
	err = ws.txManager.ExecuteInTransaction(ctx, "UpdateClaimStatus",
		func(tx postgres.QueryExecuter) error {
			if txErr := ws.claimRepo.UpdateStatus(ctx, tx, claimID, next, now); txErr != nil {
				return transaction.HandleError("UpdateClaimStatus", "update status", txErr)
			}
			if txErr := ws.outboxRepo.Enqueue(ctx, tx, event); txErr != nil {
				return transaction.HandleError("UpdateClaimStatus", "enqueue event", txErr)
			}
			return nil
		},
	)
	if err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return nil, entity.ErrClaimNotFound
		}
		return nil, fmt.Errorf("%s: transaction: %w", op, err)
	}

	log.LogAttrs(ctx, logger.InfoLevel, "claim status updated",
		logger.String("op", op),
		logger.String("claim_id", claimID.String()),
		logger.String("old_status", string(claim.Status)),
		logger.String("new_status", string(next)),
	)

	claim.Status = next
	claim.StatusUpdatedAt = now

	return claim, nil
}

func (ws *WarrantyService) DeleteClaim(ctx context.Context, claimID uuid.UUID) error {
	const op = "service.DeleteClaim"

	if err := ws.claimRepo.Delete(ctx, claimID); err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return entity.ErrClaimNotFound
		}
		return fmt.Errorf("%s: delete: %w", op, err)
	}

	ws.logger.Ctx(ctx).LogAttrs(ctx, logger.InfoLevel, "claim deleted",
		logger.String("op", op),
		logger.String("claim_id", claimID.String()),
	)
	return nil
}
