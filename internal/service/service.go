package service

import (
	"context"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/internal/tracking"
	"github.com/mapuy555/warranty-server/pkg/cache"
	"github.com/mapuy555/warranty-server/pkg/logger"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres/transaction"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	_slowOperationThreshold = 200 * time.Millisecond
)

type (
	OrderRepository interface {
		Create(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			order *entity.Order,
		) (bool, error)
		AppendItems(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			orderID string,
			items []*entity.Item,
		) error
		GetByOrderID(ctx context.Context, orderID string) (*entity.Order, error)
	}

	RegistrationRepository interface {
		Create(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			reg *entity.Registration,
		) error
		GetByOrderID(ctx context.Context, orderID string) (*entity.Registration, error)
		List(ctx context.Context) ([]*entity.Registration, error)
		SetDelivery(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			orderID string,
			deliveredAt time.Time,
			warrantyUntil time.Time,
		) error
		Delete(ctx context.Context, orderID string) error
	}

	ClaimRepository interface {
		Create(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			claim *entity.Claim,
		) error
		GetByID(ctx context.Context, claimID uuid.UUID) (*entity.Claim, error)
		ListByOrderID(ctx context.Context, orderID string) ([]*entity.Claim, error)
		List(ctx context.Context) ([]*entity.Claim, error)
		UpdateStatus(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			claimID uuid.UUID,
			status entity.ClaimStatus,
			updatedAt time.Time,
		) error
		Delete(ctx context.Context, claimID uuid.UUID) error
	}

	OutboxRepository interface {
		Enqueue(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			event *entity.NotificationEvent,
		) error
	}

	WarrantyService struct {
		orderRepo        OrderRepository
		registrationRepo RegistrationRepository
		claimRepo        ClaimRepository
		outboxRepo       OutboxRepository
		txManager        transaction.Manager
		tracker          tracking.Client
		policy           Policy
		logger           logger.Logger
		validate         *validator.Validate
		orderCache       cache.Cache[string, *entity.Order]
		cacheTTL         time.Duration
		adminUserIDs     []string
		adminBroadcast   bool
	}
)

func NewWarrantyService(
	orderRepo OrderRepository,
	registrationRepo RegistrationRepository,
	claimRepo ClaimRepository,
	outboxRepo OutboxRepository,
	txManager transaction.Manager,
	tracker tracking.Client,
	policy Policy,
	log logger.Logger,
	orderCache cache.Cache[string, *entity.Order],
	cacheTTL time.Duration,
	adminUserIDs []string,
	adminBroadcast bool,
) *WarrantyService {
	orderCache.SetOnEvicted(func(key string, _ *entity.Order) {
		log.Infow("order cache eviction", "order_id", key)
	})

	return &WarrantyService{
		orderRepo:        orderRepo,
		registrationRepo: registrationRepo,
		claimRepo:        claimRepo,
		outboxRepo:       outboxRepo,
		txManager:        txManager,
		tracker:          tracker,
		policy:           policy,
		logger:           log,
		validate:         validator.New(),
		orderCache:       orderCache,
		cacheTTL:         cacheTTL,
		adminUserIDs:     adminUserIDs,
		adminBroadcast:   adminBroadcast,
	}
}

// getOrder serves from the LRU cache first; the order head plus items
// are immutable enough that a short TTL is safe.
func (ws *WarrantyService) getOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	if cached, found := ws.orderCache.Get(orderID); found {
		return cached, nil
	}

	order, err := ws.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ws.orderCache.Put(orderID, order, ws.cacheTTL)
	return order, nil
}

func (ws *WarrantyService) warnIfSlow(ctx context.Context, op string, start time.Time) {
	duration := time.Since(start)
	if duration > _slowOperationThreshold {
		ws.logger.Ctx(ctx).LogAttrs(ctx, logger.WarnLevel, "slow service operation",
			logger.String("op", op),
			logger.String("duration", duration.String()),
		)
	}
}
