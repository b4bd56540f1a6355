package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/logger"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"

	"golang.org/x/sync/errgroup"
)

// GetStatus assembles the consolidated warranty view of one order.
// Registration and claim lookups run concurrently; a missing
// registration is part of the answer as long as claims exist, but an
// order with neither is not found.
func (ws *WarrantyService) GetStatus(ctx context.Context, orderID string) (*entity.WarrantyStatus, error) {
	const op = "service.GetStatus"

	startTime := time.Now()
	defer ws.warnIfSlow(ctx, op, startTime)

	order, err := ws.getOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return nil, entity.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%s: get order: %w", op, err)
	}

	status := &entity.WarrantyStatus{Order: order}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reg, regErr := ws.registrationRepo.GetByOrderID(gCtx, orderID)
		if regErr != nil {
			if errors.Is(regErr, entity.ErrDataNotFound) {
				return nil
			}
			return fmt.Errorf("get registration: %w", regErr)
		}
		status.Registration = reg
		return nil
	})
	g.Go(func() error {
		claims, claimErr := ws.claimRepo.ListByOrderID(gCtx, orderID)
		if claimErr != nil {
			return fmt.Errorf("list claims: %w", claimErr)
		}
		status.Claims = claims
		return nil
	})
	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if status.Registration == nil && len(status.Claims) == 0 {
		return nil, entity.ErrDataNotFound
	}

	return status, nil
}

// ListRegistrations returns every registration, newest first.
func (ws *WarrantyService) ListRegistrations(ctx context.Context) ([]*entity.Registration, error) {
	const op = "service.ListRegistrations"

	regs, err := ws.registrationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: list: %w", op, err)
	}
	return regs, nil
}

// ListClaims returns every claim, newest first.
func (ws *WarrantyService) ListClaims(ctx context.Context) ([]*entity.Claim, error) {
	const op = "service.ListClaims"

	claims, err := ws.claimRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: list: %w", op, err)
	}
	return claims, nil
}

// RequestDashboard enqueues an admin-dashboard event carrying current
// registration and claim counts. Rendering the dashboard message is
// the notification consumer's job.
func (ws *WarrantyService) RequestDashboard(ctx context.Context, adminUserID string) error {
	const op = "service.RequestDashboard"

	var (
		regs   []*entity.Registration
		claims []*entity.Claim
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gErr error
		regs, gErr = ws.registrationRepo.List(gCtx)
		return gErr
	})
	g.Go(func() error {
		var gErr error
		claims, gErr = ws.claimRepo.List(gCtx)
		return gErr
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: gather counts: %w", op, err)
	}

	pending := 0
	for _, claim := range claims {
		if !claim.Status.Terminal() {
			pending++
		}
	}

	event, err := entity.NewNotificationEvent(
		entity.EventAdminDashboard, adminUserID, "",
		entity.DashboardPayload{
			Registrations: len(regs),
			Claims:        len(claims),
			OpenClaims:    pending,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: build event: %w", op, err)
	}

	err = ws.txManager.ExecuteInTransaction(ctx, "RequestDashboard",
		func(tx postgres.QueryExecuter) error {
			return ws.outboxRepo.Enqueue(ctx, tx, event)
		},
	)
	if err != nil {
		return fmt.Errorf("%s: transaction: %w", op, err)
	}

	return nil
}

func (ws *WarrantyService) DeleteRegistration(ctx context.Context, orderID string) error {
	const op = "service.DeleteRegistration"

	if err := ws.registrationRepo.Delete(ctx, orderID); err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return entity.ErrNotRegistered
		}
		return fmt.Errorf("%s: delete: %w", op, err)
	}

	ws.logger.Ctx(ctx).LogAttrs(ctx, logger.InfoLevel, "registration deleted",
		logger.String("op", op),
		logger.String("order_id", orderID),
	)
	return nil
}
