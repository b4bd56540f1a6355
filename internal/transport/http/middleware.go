package httpt

import (
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/logger"

	"github.com/gin-gonic/gin"
)

// _adminUserHeader carries the chat-platform identity of the caller
// on admin endpoints. Upstream API gateway authenticates it; this
// service only checks the allow list.
const _adminUserHeader = "X-Admin-User-ID"

func (h *WarrantyHandler) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := h.log.GenerateRequestID()
		ctx := h.log.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (h *WarrantyHandler) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		method := c.Request.Method
		path := c.Request.URL.Path

		h.log.LogAttrs(c.Request.Context(), logger.InfoLevel, "HTTP request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", statusCode),
			logger.String("duration", latency.String()),
			logger.String("client_ip", c.ClientIP()),
			logger.String("user_agent", c.Request.UserAgent()),
		)

		h.metrics.Request(method, path, statusCode, latency)

		if latency > 200*time.Millisecond {
			h.metrics.SlowRequest(method, path, statusCode, latency)
		}
	}
}

func (h *WarrantyHandler) adminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(_adminUserHeader)
		if userID == "" || !h.authorizer.IsAdmin(c.Request.Context(), userID) {
			h.log.Ctx(c.Request.Context()).LogAttrs(c.Request.Context(), logger.WarnLevel,
				"admin access denied",
				logger.String("path", c.Request.URL.Path),
				logger.String("client_ip", c.ClientIP()),
			)
			h.handleServiceError(c, entity.ErrNotAuthorized, "transport.adminOnlyMiddleware")
			c.Abort()
			return
		}
		c.Next()
	}
}
