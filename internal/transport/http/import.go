package httpt

import (
	"context"
	"net/http"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/internal/spreadsheet"
	"github.com/mapuy555/warranty-server/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Imports get a longer deadline than the interactive endpoints.
const _importContextTimeout = 30 * time.Second

func (h *WarrantyHandler) uploadOrdersHandler(c *gin.Context) {
	channel := c.DefaultQuery("channel", string(entity.ChannelShopee))
	h.uploadOrders(c, channel)
}

// uploadOrdersTikTokHandler keeps the channel-specific upload path
// the marketplace integrations already call.
func (h *WarrantyHandler) uploadOrdersTikTokHandler(c *gin.Context) {
	h.uploadOrders(c, string(entity.ChannelTikTok))
}

func (h *WarrantyHandler) uploadOrders(c *gin.Context, channelName string) {
	const op = "transport.uploadOrdersHandler"

	channel, err := entity.ParseChannel(channelName)
	if err != nil {
		h.handleBadRequest(c, op, "Unknown sales channel")
		return
	}

	body := c.Request.Body
	if file, _, fileErr := c.Request.FormFile("file"); fileErr == nil {
		defer file.Close()
		body = file
	}

	rows, err := spreadsheet.ParseOrders(body)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}
	if len(rows) == 0 {
		h.handleBadRequest(c, op, "No rows to import")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _importContextTimeout)
	defer cancel()

	summary, err := h.svc.ImportOrders(ctx, channel, rows)
	if err != nil {
		// Partial progress still matters to the operator.
		h.log.Ctx(ctx).LogAttrs(ctx, logger.ErrorLevel, "import aborted",
			logger.String("op", op),
			logger.Int("rows_processed", summary.RowsProcessed),
			logger.Any("error", err),
		)
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, summary)
}
