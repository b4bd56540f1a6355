package httpt

import (
	"context"
	"errors"
	"net/http"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h *WarrantyHandler) handleServiceError(c *gin.Context, err error, op string) {
	log := h.log.Ctx(c.Request.Context())

	log.LogAttrs(c.Request.Context(), logger.ErrorLevel, op+" failed",
		logger.Any("error", err),
		logger.String("remote_addr", c.ClientIP()),
		logger.String("user_agent", c.Request.UserAgent()),
	)

	switch {
	case errors.Is(err, entity.ErrAlreadyRegistered):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is already registered"})
	case errors.Is(err, entity.ErrNotRegistered):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order has no warranty registration"})
	case errors.Is(err, entity.ErrWarrantyExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Warranty period has expired"})
	case errors.Is(err, entity.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Claim status transition not allowed"})
	case errors.Is(err, entity.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown claim status"})
	case errors.Is(err, entity.ErrInvalidData):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
	case errors.Is(err, entity.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
	case errors.Is(err, entity.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, entity.ErrClaimNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
	case errors.Is(err, entity.ErrDataNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, context.DeadlineExceeded):
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "request timeout",
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out"})
	default:
		log.LogAttrs(c.Request.Context(), logger.ErrorLevel, "internal server error",
			logger.Any("error", err),
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal service error"})
	}
}

func (h *WarrantyHandler) handleBadRequest(c *gin.Context, op, reason string) {
	h.log.Ctx(c.Request.Context()).LogAttrs(c.Request.Context(), logger.WarnLevel, "bad request",
		logger.String("op", op),
		logger.String("reason", reason),
		logger.String("remote_addr", c.ClientIP()),
	)

	c.JSON(http.StatusBadRequest, gin.H{"error": reason})
}
