package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mapuy555/warranty-server/internal/config"
	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/logger"
	"github.com/mapuy555/warranty-server/pkg/metric"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres/transaction"

	"github.com/google/uuid"
)

type OutboxRepository interface {
	FetchPending(
		ctx context.Context,
		queryExecuter postgres.QueryExecuter,
		limit int,
	) ([]*entity.NotificationEvent, error)
	MarkSent(
		ctx context.Context,
		queryExecuter postgres.QueryExecuter,
		eventID uuid.UUID,
	) error
	Fail(
		ctx context.Context,
		queryExecuter postgres.QueryExecuter,
		eventID uuid.UUID,
		maxAttempts int,
	) error
	CountPending(ctx context.Context) (int64, error)
}

// Dispatcher polls the outbox and pushes pending events to the
// publisher. Fetch, publish, and status update share one transaction;
// SKIP LOCKED row locks let several replicas poll the same table.
// Delivery is at-least-once: a crash between publish and commit
// republishes on the next poll.
type Dispatcher struct {
	outboxRepo OutboxRepository
	txManager  transaction.Manager
	publisher  Publisher
	metrics    metric.Outbox
	logger     logger.Logger

	pollInterval   time.Duration
	batchSize      int
	maxAttempts    int
	publishTimeout time.Duration
}

func NewDispatcher(
	outboxRepo OutboxRepository,
	txManager transaction.Manager,
	publisher Publisher,
	metrics metric.Outbox,
	log logger.Logger,
	cfg config.Outbox,
) *Dispatcher {
	return &Dispatcher{
		outboxRepo: outboxRepo,
		txManager:  txManager,
		publisher:  publisher,
		metrics:    metrics,
		logger:     log,

		pollInterval:   cfg.PollInterval,
		batchSize:      cfg.BatchSize,
		maxAttempts:    cfg.MaxAttempts,
		publishTimeout: cfg.PublishTimeout,
	}
}

// Run polls until the context is canceled. Intended to live in the
// application's errgroup.
func (d *Dispatcher) Run(ctx context.Context) error {
	const op = "notifier.Dispatcher.Run"
	log := d.logger.Ctx(ctx)

	log.LogAttrs(ctx, logger.InfoLevel, "outbox dispatcher started",
		logger.String("op", op),
		logger.String("poll_interval", d.pollInterval.String()),
		logger.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.LogAttrs(ctx, logger.InfoLevel, "outbox dispatcher stopping",
				logger.String("op", op),
			)
			return nil
		case <-ticker.C:
			if err := d.dispatchBatch(ctx); err != nil {
				log.LogAttrs(ctx, logger.ErrorLevel, "dispatch batch failed",
					logger.String("op", op),
					logger.Any("error", err),
				)
			}
			d.reportBacklog(ctx)
		}
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context) error {
	const op = "notifier.Dispatcher.dispatchBatch"

	return d.txManager.ExecuteInTransaction(ctx, "DispatchOutbox",
		func(tx postgres.QueryExecuter) error {
			events, err := d.outboxRepo.FetchPending(ctx, tx, d.batchSize)
			if err != nil {
				return fmt.Errorf("%s: fetch pending: %w", op, err)
			}

			for _, event := range events {
				if err = d.dispatchOne(ctx, tx, event); err != nil {
					return fmt.Errorf("%s: event %s: %w", op, event.EventID, err)
				}
			}
			return nil
		},
	)
}

func (d *Dispatcher) dispatchOne(
	ctx context.Context,
	tx postgres.QueryExecuter,
	event *entity.NotificationEvent,
) error {
	log := d.logger.Ctx(ctx)

	publishCtx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	err := d.publisher.Publish(publishCtx, event)
	cancel()

	if err != nil {
		d.metrics.Failed(string(event.Kind), failureReason(err))
		if event.Attempts+1 >= d.maxAttempts {
			d.metrics.Dead(string(event.Kind))
			log.LogAttrs(ctx, logger.WarnLevel, "event abandoned after max attempts",
				logger.String("event_id", event.EventID.String()),
				logger.String("kind", string(event.Kind)),
				logger.Int("attempts", event.Attempts+1),
				logger.Any("error", err),
			)
		}
		return d.outboxRepo.Fail(ctx, tx, event.EventID, d.maxAttempts)
	}

	d.metrics.Published(string(event.Kind))
	return d.outboxRepo.MarkSent(ctx, tx, event.EventID)
}

func (d *Dispatcher) reportBacklog(ctx context.Context) {
	count, err := d.outboxRepo.CountPending(ctx)
	if err != nil {
		d.logger.Ctx(ctx).Warnw("count pending failed", "error", err)
		return
	}
	d.metrics.Pending(count)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "publish_error"
	}
}
