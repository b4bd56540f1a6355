package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const claimColumns = "claim_id, order_id, user_id, contact, reason, status, created_at, status_updated_at"

type ClaimRepository struct {
	db *postgres.Postgres
}

func NewClaimRepository(db *postgres.Postgres) *ClaimRepository {
	return &ClaimRepository{db}
}

func (cr *ClaimRepository) Create(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	claim *entity.Claim,
) error {
	const op = "repository.claim.Create"

	query := cr.db.Builder.Insert("claims").
		Columns("claim_id", "order_id", "user_id", "contact", "reason",
			"status", "created_at", "status_updated_at").
		Values(
			claim.ClaimID,
			claim.OrderID,
			claim.Claimant.UserID,
			claim.Claimant.Contact,
			claim.Reason,
			claim.Status,
			claim.CreatedAt,
			claim.StatusUpdatedAt,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	if _, err = queryExecuter.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return entity.ErrConflictingData
		}
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

func (cr *ClaimRepository) GetByID(
	ctx context.Context,
	claimID uuid.UUID,
) (*entity.Claim, error) {
	const op = "repository.claim.GetByID"

	query := cr.db.Builder.
		Select(claimColumns).
		From("claims").
		Where(squirrel.Eq{"claim_id": claimID}).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	claim, err := scanClaim(cr.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDataNotFound
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	return claim, nil
}

func (cr *ClaimRepository) ListByOrderID(
	ctx context.Context,
	orderID string,
) ([]*entity.Claim, error) {
	const op = "repository.claim.ListByOrderID"

	return cr.list(ctx, op, squirrel.Eq{"order_id": orderID})
}

func (cr *ClaimRepository) List(ctx context.Context) ([]*entity.Claim, error) {
	const op = "repository.claim.List"

	return cr.list(ctx, op, nil)
}

func (cr *ClaimRepository) list(
	ctx context.Context,
	op string,
	where any,
) ([]*entity.Claim, error) {
	query := cr.db.Builder.
		Select(claimColumns).
		From("claims").
		OrderBy("created_at DESC")
	if where != nil {
		query = query.Where(where)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	rows, err := cr.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	result := make([]*entity.Claim, 0)
	for rows.Next() {
		claim, scanErr := scanClaim(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: rows scan: %w", op, scanErr)
		}
		result = append(result, claim)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows final error: %w", op, rows.Err())
	}

	return result, nil
}

func (cr *ClaimRepository) UpdateStatus(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	claimID uuid.UUID,
	status entity.ClaimStatus,
	updatedAt time.Time,
) error {
	const op = "repository.claim.UpdateStatus"

	query := cr.db.Builder.Update("claims").
		Set("status", status).
		Set("status_updated_at", updatedAt).
		Where(squirrel.Eq{"claim_id": claimID})

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

func (cr *ClaimRepository) Delete(ctx context.Context, claimID uuid.UUID) error {
	const op = "repository.claim.Delete"

	query := cr.db.Builder.Delete("claims").
		Where(squirrel.Eq{"claim_id": claimID})

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	tag, err := cr.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrDataNotFound
	}

	return nil
}

func scanClaim(row pgx.Row) (*entity.Claim, error) {
	claim := &entity.Claim{}
	err := row.Scan(
		&claim.ClaimID,
		&claim.OrderID,
		&claim.Claimant.UserID,
		&claim.Claimant.Contact,
		&claim.Reason,
		&claim.Status,
		&claim.CreatedAt,
		&claim.StatusUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return claim, nil
}
