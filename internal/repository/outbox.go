package repository

import (
	"context"
	"fmt"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type OutboxRepository struct {
	db *postgres.Postgres
}

func NewOutboxRepository(db *postgres.Postgres) *OutboxRepository {
	return &OutboxRepository{db}
}

// Enqueue writes an event row inside the caller's transaction, tying
// the notification to the state change it announces.
func (obr *OutboxRepository) Enqueue(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	event *entity.NotificationEvent,
) error {
	const op = "repository.outbox.Enqueue"

	query := obr.db.Builder.Insert("notification_outbox").
		Columns("event_id", "kind", "recipient", "order_id", "payload",
			"status", "attempts", "created_at").
		Values(
			event.EventID,
			event.Kind,
			event.Recipient,
			event.OrderID,
			event.Payload,
			event.Status,
			event.Attempts,
			event.CreatedAt,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	if _, err = queryExecuter.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

// FetchPending locks a batch of undelivered events. Must run inside a
// transaction: SKIP LOCKED keeps concurrent dispatchers off the same
// rows until commit.
func (obr *OutboxRepository) FetchPending(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	limit int,
) ([]*entity.NotificationEvent, error) {
	const op = "repository.outbox.FetchPending"

	query := obr.db.Builder.
		Select("event_id", "kind", "recipient", "order_id", "payload",
			"status", "attempts", "created_at").
		From("notification_outbox").
		Where(squirrel.Eq{"status": entity.OutboxPending}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	rows, err := queryExecuter.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	result := make([]*entity.NotificationEvent, 0, limit)
	for rows.Next() {
		event := &entity.NotificationEvent{}
		if err = rows.Scan(
			&event.EventID,
			&event.Kind,
			&event.Recipient,
			&event.OrderID,
			&event.Payload,
			&event.Status,
			&event.Attempts,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: rows scan: %w", op, err)
		}
		result = append(result, event)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows final error: %w", op, rows.Err())
	}

	return result, nil
}

func (obr *OutboxRepository) MarkSent(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	eventID uuid.UUID,
) error {
	const op = "repository.outbox.MarkSent"

	query := obr.db.Builder.Update("notification_outbox").
		Set("status", entity.OutboxSent).
		Set("sent_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"event_id": eventID})

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	tag, err := queryExecuter.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrDataNotFound
	}

	return nil
}

// Fail records a delivery failure. The row stays pending for the next
// poll until attempts reach maxAttempts, then it is marked dead.
func (obr *OutboxRepository) Fail(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	eventID uuid.UUID,
	maxAttempts int,
) error {
	const op = "repository.outbox.Fail"

	sql := `UPDATE notification_outbox
		SET attempts = attempts + 1,
		    status = CASE WHEN attempts + 1 >= $2 THEN 'dead' ELSE status END
		WHERE event_id = $1`

	tag, err := queryExecuter.Exec(ctx, sql, eventID, maxAttempts)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrDataNotFound
	}

	return nil
}

func (obr *OutboxRepository) CountPending(ctx context.Context) (int64, error) {
	const op = "repository.outbox.CountPending"

	query := obr.db.Builder.
		Select("count(*)").
		From("notification_outbox").
		Where(squirrel.Eq{"status": entity.OutboxPending})

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: building query: %w", op, err)
	}

	var count int64
	if err = obr.db.Pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: query row: %w", op, err)
	}

	return count, nil
}
