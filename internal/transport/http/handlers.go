package httpt

import (
	"context"
	"net/http"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/logger"

	"github.com/gin-gonic/gin"
)

const _defaultContextTimeout = 2 * time.Second

func (h *WarrantyHandler) registerHandler(c *gin.Context) {
	const op = "transport.registerHandler"

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBadRequest(c, op, "Invalid registration payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	reg, err := h.svc.RegisterWarranty(ctx, req.OrderID, req.registrant())
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	h.log.Ctx(ctx).LogAttrs(ctx, logger.InfoLevel, "registration created",
		logger.String("order_id", req.OrderID),
	)

	c.JSON(http.StatusOK, reg)
}

// refreshDeliveryHandler re-runs the carrier lookup for a registration
// whose delivery confirmation arrived after registration time.
func (h *WarrantyHandler) refreshDeliveryHandler(c *gin.Context) {
	const op = "transport.refreshDeliveryHandler"

	orderID := c.Param("order_id")
	if orderID == "" {
		h.handleBadRequest(c, op, "Missing order id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	reg, err := h.svc.RefreshDelivery(ctx, orderID)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, reg)
}

func (h *WarrantyHandler) fileClaimHandler(c *gin.Context) {
	const op = "transport.fileClaimHandler"

	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBadRequest(c, op, "Invalid claim payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	claim, err := h.svc.FileClaim(ctx, req.OrderID, entity.Claimant{
		UserID:  req.UserID,
		Contact: req.Contact,
	}, req.Reason)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	h.log.Ctx(ctx).LogAttrs(ctx, logger.InfoLevel, "claim created",
		logger.String("order_id", req.OrderID),
		logger.String("claim_id", claim.ClaimID.String()),
	)

	c.JSON(http.StatusOK, claim)
}

func (h *WarrantyHandler) checkStatusHandler(c *gin.Context) {
	h.checkStatus(c, c.Param("order_id"))
}

// checkStatusQueryHandler keeps the older ?orderId= form working.
func (h *WarrantyHandler) checkStatusQueryHandler(c *gin.Context) {
	h.checkStatus(c, c.Query("orderId"))
}

func (h *WarrantyHandler) checkStatus(c *gin.Context, orderID string) {
	const op = "transport.checkStatusHandler"

	if orderID == "" {
		h.handleBadRequest(c, op, "Missing order id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	status, err := h.svc.GetStatus(ctx, orderID)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, status)
}
