package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const registrationColumns = "order_id, name, phone, email, address, user_id, registered_at, warranty_until, delivered_at"

type RegistrationRepository struct {
	db *postgres.Postgres
}

func NewRegistrationRepository(db *postgres.Postgres) *RegistrationRepository {
	return &RegistrationRepository{db}
}

// Create persists a registration. The order_id primary key plus the
// conditional insert make "one registration per order" atomic: of two
// concurrent calls exactly one inserts a row, the other gets
// ErrConflictingData.
func (rr *RegistrationRepository) Create(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	reg *entity.Registration,
) error {
	const op = "repository.registration.Create"

	query := rr.db.Builder.Insert("registrations").
		Columns("order_id", "name", "phone", "email", "address", "user_id",
			"registered_at", "warranty_until", "delivered_at").
		Values(
			reg.OrderID,
			reg.Registrant.Name,
			reg.Registrant.Phone,
			reg.Registrant.Email,
			reg.Registrant.Address,
			reg.Registrant.UserID,
			reg.RegisteredAt,
			reg.WarrantyUntil,
			reg.DeliveredAt,
		).
		Suffix("ON CONFLICT (order_id) DO NOTHING")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	tag, err := queryExecuter.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrConflictingData
	}

	return nil
}

func (rr *RegistrationRepository) GetByOrderID(
	ctx context.Context,
	orderID string,
) (*entity.Registration, error) {
	const op = "repository.registration.GetByOrderID"

	query := rr.db.Builder.
		Select(registrationColumns).
		From("registrations").
		Where(squirrel.Eq{"order_id": orderID}).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	reg, err := scanRegistration(rr.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDataNotFound
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	return reg, nil
}

func (rr *RegistrationRepository) List(ctx context.Context) ([]*entity.Registration, error) {
	const op = "repository.registration.List"

	query := rr.db.Builder.
		Select(registrationColumns).
		From("registrations").
		OrderBy("registered_at DESC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	rows, err := rr.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	result := make([]*entity.Registration, 0)
	for rows.Next() {
		reg, scanErr := scanRegistration(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: rows scan: %w", op, scanErr)
		}
		result = append(result, reg)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows final error: %w", op, rows.Err())
	}

	return result, nil
}

// SetDelivery re-derives the warranty window from late-arriving
// carrier confirmation.
func (rr *RegistrationRepository) SetDelivery(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	orderID string,
	deliveredAt time.Time,
	warrantyUntil time.Time,
) error {
	const op = "repository.registration.SetDelivery"

	query := rr.db.Builder.Update("registrations").
		Set("delivered_at", deliveredAt).
		Set("warranty_until", warrantyUntil).
		Where(squirrel.Eq{"order_id": orderID})

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

func (rr *RegistrationRepository) Delete(ctx context.Context, orderID string) error {
	const op = "repository.registration.Delete"

	query := rr.db.Builder.Delete("registrations").
		Where(squirrel.Eq{"order_id": orderID})

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	tag, err := rr.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrDataNotFound
	}

	return nil
}

func scanRegistration(row pgx.Row) (*entity.Registration, error) {
	reg := &entity.Registration{}
	err := row.Scan(
		&reg.OrderID,
		&reg.Registrant.Name,
		&reg.Registrant.Phone,
		&reg.Registrant.Email,
		&reg.Registrant.Address,
		&reg.Registrant.UserID,
		&reg.RegisteredAt,
		&reg.WarrantyUntil,
		&reg.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	return reg, nil
}
