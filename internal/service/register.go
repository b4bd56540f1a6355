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
)

// RegisterWarranty creates the one registration an order may have.
// The warranty window is anchored on delivery confirmation when the
// tracking gateway knows one, otherwise on registration time.
func (ws *WarrantyService) RegisterWarranty(
	ctx context.Context,
	orderID string,
	registrant entity.Registrant,
) (*entity.Registration, error) {
	const op = "service.RegisterWarranty"
	log := ws.logger.Ctx(ctx)

	startTime := time.Now()
	defer ws.warnIfSlow(ctx, op, startTime)

	if err := ws.validate.Struct(&registrant); err != nil {
		return nil, fmt.Errorf("%s: validate registrant: %w", op, entity.ErrInvalidData)
	}

	order, err := ws.getOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return nil, entity.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%s: get order: %w", op, err)
	}

	now := time.Now().UTC()
	base := now
	var deliveredAt *time.Time

	if ws.tracker != nil {
		delivered, ok, trackErr := ws.tracker.DeliveredAt(ctx, order.Carrier, order.TrackingNumber)
		if trackErr != nil {
			// Delivery lookup is best-effort; registration proceeds on
			// the registration-time anchor.
			log.LogAttrs(ctx, logger.WarnLevel, "delivery lookup failed",
				logger.String("op", op),
				logger.String("order_id", orderID),
				logger.Any("error", trackErr),
			)
		} else if ok {
			base = delivered
			deliveredAt = &delivered
		}
	}

	reg := &entity.Registration{
		OrderID:       orderID,
		Registrant:    registrant,
		RegisteredAt:  now,
		WarrantyUntil: ComputeWarrantyUntil(base, ws.policy.Days(order.Channel)),
		DeliveredAt:   deliveredAt,
	}

	event, err := entity.NewNotificationEvent(
		entity.EventRegistrationCompleted,
		registrant.UserID,
		orderID,
		entity.RegistrationCompletedPayload{
			RegistrantName: registrant.Name,
			OrderID:        orderID,
			Items:          order.Items,
			WarrantyUntil:  reg.WarrantyUntil,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: build event: %w", op, err)
	}

	err = ws.txManager.ExecuteInTransaction(ctx, "RegisterWarranty",
		func(tx postgres.QueryExecuter) error {
			if txErr := ws.registrationRepo.Create(ctx, tx, reg); txErr != nil {
				return transaction.HandleError("RegisterWarranty", "create registration", txErr)
			}
			if txErr := ws.outboxRepo.Enqueue(ctx, tx, event); txErr != nil {
				return transaction.HandleError("RegisterWarranty", "enqueue event", txErr)
			}
			return nil
		},
	)
	if err != nil {
		if errors.Is(err, entity.ErrConflictingData) {
			return nil, entity.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("%s: transaction: %w", op, err)
	}

	log.LogAttrs(ctx, logger.InfoLevel, "warranty registered",
		logger.String("op", op),
		logger.String("order_id", orderID),
		logger.Time("warranty_until", reg.WarrantyUntil),
		logger.Bool("delivery_confirmed", deliveredAt != nil),
	)

	return reg, nil
}

// RefreshDelivery re-anchors an existing registration's warranty
// window on a delivery confirmation that arrived after registration.
func (ws *WarrantyService) RefreshDelivery(ctx context.Context, orderID string) (*entity.Registration, error) {
	const op = "service.RefreshDelivery"
	log := ws.logger.Ctx(ctx)

	reg, err := ws.registrationRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return nil, entity.ErrNotRegistered
		}
		return nil, fmt.Errorf("%s: get registration: %w", op, err)
	}
	if reg.DeliveredAt != nil {
		return reg, nil
	}

	order, err := ws.getOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return nil, entity.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%s: get order: %w", op, err)
	}

	delivered, ok, err := ws.tracker.DeliveredAt(ctx, order.Carrier, order.TrackingNumber)
	if err != nil {
		return nil, fmt.Errorf("%s: delivery lookup: %w", op, err)
	}
	if !ok {
		return reg, nil
	}

	warrantyUntil := ComputeWarrantyUntil(delivered, ws.policy.Days(order.Channel))
	err = ws.txManager.ExecuteInTransaction(ctx, "RefreshDelivery",
		func(tx postgres.QueryExecuter) error {
			return ws.registrationRepo.SetDelivery(ctx, tx, orderID, delivered, warrantyUntil)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: transaction: %w", op, err)
	}

	reg.DeliveredAt = &delivered
	reg.WarrantyUntil = warrantyUntil

	log.LogAttrs(ctx, logger.InfoLevel, "delivery confirmed, warranty re-anchored",
		logger.String("op", op),
		logger.String("order_id", orderID),
		logger.Time("delivered_at", delivered),
		logger.Time("warranty_until", warrantyUntil),
	)

	return reg, nil
}
