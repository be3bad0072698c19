// Package router assembles the gin engine for the webhook server.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brendansiraky/beerfarm-scripts/internal/interfaces/http/handler"
	"github.com/brendansiraky/beerfarm-scripts/internal/interfaces/http/middleware"

	applog "github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/logger"
)

// New builds the engine: a public health endpoint plus the bearer-protected
// webhook group.
func New(webhooks *handler.WebhookHandler, apiKey string, logger *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		applog.GinMiddleware(logger),
		applog.Recovery(logger),
	)

	engine.GET("/health", handler.Health)

	group := engine.Group("/webhooks", middleware.WebhookAuth(apiKey))
	group.POST("/hook-consignment", webhooks.Consignment)
	group.POST("/hook-purchaseorder", webhooks.PurchaseOrder)
	group.POST("/hook-salesorder", webhooks.SalesOrder)

	return engine
}
