package httpt

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *WarrantyHandler) setupRoutes() {
	h.router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	api := h.router.Group("/api")
	{
		api.POST("/register", h.registerHandler)
		api.POST("/registrations/:order_id/refresh-delivery", h.refreshDeliveryHandler)
		api.POST("/claim", h.fileClaimHandler)
		api.GET("/check-status/:order_id", h.checkStatusHandler)
		api.GET("/check-status", h.checkStatusQueryHandler)

		api.POST("/upload-orders", h.uploadOrdersHandler)
		api.POST("/upload-orders-tiktok", h.uploadOrdersTikTokHandler)

		admin := api.Group("", h.adminOnlyMiddleware())
		{
			admin.GET("/claims", h.listClaimsHandler)
			admin.GET("/registrations", h.listRegistrationsHandler)
			admin.PATCH("/claims/:claim_id/status", h.updateClaimStatusHandler)
			admin.DELETE("/claims/:claim_id", h.deleteClaimHandler)
			admin.DELETE("/registrations/:order_id", h.deleteRegistrationHandler)
		}
	}

	h.router.POST("/webhook", h.webhookHandler)
}
