package httpt

import (
	"context"
	"net/http"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *WarrantyHandler) listClaimsHandler(c *gin.Context) {
	const op = "transport.listClaimsHandler"

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	claims, err := h.svc.ListClaims(ctx)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

func (h *WarrantyHandler) listRegistrationsHandler(c *gin.Context) {
	const op = "transport.listRegistrationsHandler"

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	regs, err := h.svc.ListRegistrations(ctx)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, gin.H{"registrations": regs})
}

func (h *WarrantyHandler) updateClaimStatusHandler(c *gin.Context) {
	const op = "transport.updateClaimStatusHandler"

	claimID, err := uuid.Parse(c.Param("claim_id"))
	if err != nil {
		h.handleBadRequest(c, op, "Invalid claim id format")
		return
	}

	var req updateClaimStatusRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		h.handleBadRequest(c, op, "Invalid status payload")
		return
	}

	status, err := entity.ParseClaimStatus(req.Status)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	claim, err := h.svc.UpdateClaimStatus(ctx, claimID, status)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	h.log.Ctx(ctx).LogAttrs(ctx, logger.InfoLevel, "claim status changed",
		logger.String("claim_id", claimID.String()),
		logger.String("status", string(status)),
	)

	c.JSON(http.StatusOK, claim)
}

func (h *WarrantyHandler) deleteClaimHandler(c *gin.Context) {
	const op = "transport.deleteClaimHandler"

	claimID, err := uuid.Parse(c.Param("claim_id"))
	if err != nil {
		h.handleBadRequest(c, op, "Invalid claim id format")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	if err = h.svc.DeleteClaim(ctx, claimID); err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Claim deleted"})
}

func (h *WarrantyHandler) deleteRegistrationHandler(c *gin.Context) {
	const op = "transport.deleteRegistrationHandler"

	orderID := c.Param("order_id")
	if orderID == "" {
		h.handleBadRequest(c, op, "Missing order id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	if err := h.svc.DeleteRegistration(ctx, orderID); err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registration deleted"})
}
