package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/logger"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres/transaction"
)

// ImportOrders applies a channel export row by row. Rows for the same
// order are grouped: the first occurrence creates the order head, every
// occurrence appends its line item. Each order group commits in its own
// transaction, so a failure mid-file keeps the groups already applied.
func (ws *WarrantyService) ImportOrders(
	ctx context.Context,
	channel entity.Channel,
	rows []*entity.ImportRow,
) (*entity.ImportSummary, error) {
	const op = "service.ImportOrders"
	log := ws.logger.Ctx(ctx)

	startTime := time.Now()
	defer ws.warnIfSlow(ctx, op, startTime)

	if !channel.Valid() {
		return nil, fmt.Errorf("%s: channel %q: %w", op, channel, entity.ErrInvalidData)
	}

	summary := &entity.ImportSummary{}
	for _, group := range groupRows(rows) {
		if err := ws.validateGroup(group); err != nil {
			return summary, fmt.Errorf("%s: order %s: %w", op, group[0].OrderID, err)
		}

		created, err := ws.importGroup(ctx, channel, group)
		if err != nil {
			return summary, fmt.Errorf("%s: order %s: %w", op, group[0].OrderID, err)
		}
		if created {
			summary.OrdersCreated++
		}
		summary.ItemsAppended += len(group)
		summary.RowsProcessed += len(group)
	}

	log.LogAttrs(ctx, logger.InfoLevel, "import finished",
		logger.String("op", op),
		logger.String("channel", string(channel)),
		logger.Int("orders_created", summary.OrdersCreated),
		logger.Int("items_appended", summary.ItemsAppended),
		logger.Int("rows_processed", summary.RowsProcessed),
	)

	return summary, nil
}

func (ws *WarrantyService) validateGroup(group []*entity.ImportRow) error {
	for _, row := range group {
		if err := ws.validate.Struct(row); err != nil {
			return fmt.Errorf("validate row: %w", entity.ErrInvalidData)
		}
	}
	return nil
}

func (ws *WarrantyService) importGroup(
	ctx context.Context,
	channel entity.Channel,
	group []*entity.ImportRow,
) (bool, error) {
	head := group[0]
	order := &entity.Order{
		OrderID:        head.OrderID,
		Channel:        channel,
		CustomerName:   head.CustomerName,
		PurchasedAt:    head.PurchasedAt,
		Carrier:        entity.InferCarrier(head.ShippingProvider),
		TrackingNumber: head.TrackingNumber,
	}

	items := make([]*entity.Item, 0, len(group))
	for _, row := range group {
		items = append(items, row.Item())
	}

	var created bool
	err := ws.txManager.ExecuteInTransaction(ctx, "ImportOrders",
		func(tx postgres.QueryExecuter) error {
			var txErr error
			created, txErr = ws.orderRepo.Create(ctx, tx, order)
			if txErr != nil {
				return transaction.HandleError("ImportOrders", "create order", txErr)
			}
			if txErr = ws.orderRepo.AppendItems(ctx, tx, order.OrderID, items); txErr != nil {
				return transaction.HandleError("ImportOrders", "append items", txErr)
			}
			return nil
		},
	)
	if err != nil {
		return false, err
	}

	// Items changed, so a cached copy is stale.
	ws.orderCache.Remove(order.OrderID)

	return created, nil
}

// groupRows buckets rows by order ID preserving first-seen order.
func groupRows(rows []*entity.ImportRow) [][]*entity.ImportRow {
	index := make(map[string]int, len(rows))
	groups := make([][]*entity.ImportRow, 0, len(rows))
	for _, row := range rows {
		if i, ok := index[row.OrderID]; ok {
			groups[i] = append(groups[i], row)
			continue
		}
		index[row.OrderID] = len(groups)
		groups = append(groups, []*entity.ImportRow{row})
	}
	return groups
}
