package httpt

import (
	"github.com/mapuy555/warranty-server/internal/auth"
	"github.com/mapuy555/warranty-server/internal/service"
	"github.com/mapuy555/warranty-server/pkg/logger"
	"github.com/mapuy555/warranty-server/pkg/metric"

	"github.com/gin-gonic/gin"
)

type WarrantyHandler struct {
	svc        *service.WarrantyService
	log        logger.Logger
	metrics    metric.HTTP
	authorizer auth.Authorizer
	router     *gin.Engine
}

func NewWarrantyHandler(
	svc *service.WarrantyService,
	log logger.Logger,
	metrics metric.HTTP,
	authorizer auth.Authorizer,
) *WarrantyHandler {
	h := &WarrantyHandler{
		svc:        svc,
		log:        log,
		metrics:    metrics,
		authorizer: authorizer,
	}

	router := gin.New()

	router.Use(h.requestIDMiddleware())
	router.Use(h.loggingMiddleware())
	router.Use(gin.Recovery())

	h.router = router

	h.setupRoutes()

	return h
}

func (h *WarrantyHandler) Engine() *gin.Engine {
	return h.router
}
