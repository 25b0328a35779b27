package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoeshop/pos-backend/internal/config"
	"github.com/shoeshop/pos-backend/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(cfg config.ServerConfig, inventoryHandler *handlers.InventoryHandler, salesHandler *handlers.SalesHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(corsMiddleware(cfg.CORSOrigins))

	api := r.Group("/api")
	{
		api.POST("/shoes/add", inventoryHandler.Restock)
		api.GET("/shoes", inventoryHandler.CurrentStock)
		api.GET("/shoes/barcode/:code", inventoryHandler.ResolveCode)
		api.GET("/shoes/record/:id", inventoryHandler.Get)
		api.PATCH("/shoes/record/:id", inventoryHandler.Update)

		api.POST("/sell", salesHandler.Sell)
		api.GET("/sales", salesHandler.ListSales)
		api.GET("/sales/:id", salesHandler.GetSale)
		api.PUT("/sales/:id/items", salesHandler.ReplaceItems)
		api.PATCH("/sales/:id/item/:itemIndex", salesHandler.PatchItem)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}
	return cors.New(corsConfig)
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
