package routers

import (
	"github.com/gin-gonic/gin"

	"github.com/pryimakv14/StockOutPredict/internal/server/handlers/accuracy"
	"github.com/pryimakv14/StockOutPredict/internal/server/handlers/orders"
	"github.com/pryimakv14/StockOutPredict/internal/server/handlers/parameters"
	"github.com/pryimakv14/StockOutPredict/internal/server/middlewares"
	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
// ordersHandler 可为 nil（未配置队列时不开下单接入端点）
func SetupRoutes(
	parametersHandler *parameters.ParametersHandler,
	accuracyHandler *accuracy.AccuracyHandler,
	ordersHandler *orders.OrdersHandler,
	log logger.Logger,
) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "stockout-predict",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		params := v1.Group("/parameters")
		{
			params.GET("", parametersHandler.List)
			params.GET("/:sku", parametersHandler.Get)
			params.PUT("/:sku", parametersHandler.Update)
		}

		v1.GET("/accuracy/:sku", accuracyHandler.Fetch)

		if ordersHandler != nil {
			v1.POST("/orders", ordersHandler.Create)
		}
	}

	return r
}
