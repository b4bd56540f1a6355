package httpt

import (
	"context"
	"net/http"
	"strings"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const _postbackStatusPrefix = "claim_status:"

// webhookHandler accepts inbound chat-platform events. The platform
// expects 200 for anything it sends; events we do not understand are
// acknowledged and dropped.
func (h *WarrantyHandler) webhookHandler(c *gin.Context) {
	const op = "transport.webhookHandler"

	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBadRequest(c, op, "Invalid webhook payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	for _, event := range req.Events {
		h.handleWebhookEvent(ctx, event)
	}

	c.Status(http.StatusOK)
}

func (h *WarrantyHandler) handleWebhookEvent(ctx context.Context, event webhookEvent) {
	const op = "transport.handleWebhookEvent"
	log := h.log.Ctx(ctx)

	userID := event.Source.UserID

	switch event.Type {
	case "message":
		if event.Message.Type != "text" {
			return
		}
		if !strings.EqualFold(strings.TrimSpace(event.Message.Text), "dashboard") {
			return
		}
		if !h.authorizer.IsAdmin(ctx, userID) {
			log.LogAttrs(ctx, logger.WarnLevel, "dashboard command from non-admin",
				logger.String("op", op),
				logger.String("user_id", userID),
			)
			return
		}
		if err := h.svc.RequestDashboard(ctx, userID); err != nil {
			log.LogAttrs(ctx, logger.ErrorLevel, "dashboard request failed",
				logger.String("op", op),
				logger.Any("error", err),
			)
		}

	case "postback":
		h.handlePostback(ctx, userID, event.Postback.Data)
	}
}

// handlePostback processes "claim_status:<claim_id>:<status>" actions
// sent from admin notification buttons.
func (h *WarrantyHandler) handlePostback(ctx context.Context, userID, data string) {
	const op = "transport.handlePostback"
	log := h.log.Ctx(ctx)

	if !strings.HasPrefix(data, _postbackStatusPrefix) {
		return
	}
	if !h.authorizer.IsAdmin(ctx, userID) {
		log.LogAttrs(ctx, logger.WarnLevel, "status postback from non-admin",
			logger.String("op", op),
			logger.String("user_id", userID),
		)
		return
	}

	parts := strings.Split(strings.TrimPrefix(data, _postbackStatusPrefix), ":")
	if len(parts) != 2 {
		log.LogAttrs(ctx, logger.WarnLevel, "malformed status postback",
			logger.String("op", op),
			logger.String("data", data),
		)
		return
	}

	claimID, err := uuid.Parse(parts[0])
	if err != nil {
		log.LogAttrs(ctx, logger.WarnLevel, "malformed claim id in postback",
			logger.String("op", op),
			logger.String("data", data),
		)
		return
	}

	status, err := entity.ParseClaimStatus(parts[1])
	if err != nil {
		log.LogAttrs(ctx, logger.WarnLevel, "unknown status in postback",
			logger.String("op", op),
			logger.String("data", data),
		)
		return
	}

	if _, err = h.svc.UpdateClaimStatus(ctx, claimID, status); err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "postback status update failed",
			logger.String("op", op),
			logger.String("claim_id", claimID.String()),
			logger.Any("error", err),
		)
	}
}
