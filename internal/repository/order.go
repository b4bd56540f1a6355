package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type OrderRepository struct {
	db *postgres.Postgres
}

func NewOrderRepository(db *postgres.Postgres) *OrderRepository {
	return &OrderRepository{db}
}

// Create inserts the order head row if absent. Returns false when an
// order with this id already exists; the conditional insert is a
// single statement, so concurrent imports cannot both create it.
func (or *OrderRepository) Create(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	order *entity.Order,
) (bool, error) {
	const op = "repository.order.Create"

	query := or.db.Builder.Insert("orders").
		Columns("order_id", "channel", "customer_name", "purchased_at", "carrier", "tracking_number").
		Values(
			order.OrderID,
			order.Channel,
			order.CustomerName,
			order.PurchasedAt,
			order.Carrier,
			order.TrackingNumber,
		).
		Suffix("ON CONFLICT (order_id) DO NOTHING")

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: building query: %w", op, err)
	}

	tag, err := queryExecuter.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("%s: exec: %w", op, err)
	}

	return tag.RowsAffected() > 0, nil
}

// AppendItems adds line items to an existing order. Items carry no
// dedup key, so repeated imports of the same row accumulate. The
// position sequence assigned on insert keeps listings in append order.
func (or *OrderRepository) AppendItems(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	orderID string,
	items []*entity.Item,
) error {
	const op = "repository.order.AppendItems"

	if len(items) == 0 {
		return nil
	}

	tx, ok := queryExecuter.(*postgres.TxQueryExecuter)
	if !ok {
		return fmt.Errorf("%s: queryExecuter is not a transaction", op)
	}

	rows := make([][]interface{}, 0, len(items))
	for _, item := range items {
		rows = append(rows, []interface{}{
			uuid.New(),
			orderID,
			item.ProductName,
			item.Quantity,
			item.SKU,
			item.UnitPrice,
		})
	}

	columnNames := []string{
		"item_id", "order_id", "product_name", "quantity", "sku", "unit_price",
	}

	_, err := tx.Tx.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		columnNames,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return entity.ErrConflictingData
		}
		return fmt.Errorf("%s: copy from: %w", op, err)
	}

	return nil
}

func (or *OrderRepository) GetByOrderID(
	ctx context.Context,
	orderID string,
) (*entity.Order, error) {
	const op = "repository.order.GetByOrderID"

	query := or.db.Builder.
		Select("order_id", "channel", "customer_name", "purchased_at", "carrier", "tracking_number").
		From("orders").
		Where(squirrel.Eq{"order_id": orderID}).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	result := &entity.Order{}
	err = or.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&result.OrderID,
		&result.Channel,
		&result.CustomerName,
		&result.PurchasedAt,
		&result.Carrier,
		&result.TrackingNumber,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDataNotFound
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	items, err := or.itemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	result.Items = items

	return result, nil
}

func (or *OrderRepository) itemsByOrderID(
	ctx context.Context,
	orderID string,
) ([]*entity.Item, error) {
	const op = "repository.order.itemsByOrderID"

	query := or.db.Builder.
		Select("product_name", "quantity", "sku", "unit_price").
		From("order_items").
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("position")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	rows, err := or.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	result := make([]*entity.Item, 0)
	for rows.Next() {
		item := &entity.Item{}
		if err = rows.Scan(
			&item.ProductName,
			&item.Quantity,
			&item.SKU,
			&item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("%s: rows scan: %w", op, err)
		}
		result = append(result, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows final error: %w", op, rows.Err())
	}

	return result, nil
}
