package http

import (
	"github.com/ThusharaSampath/stock-portfolio/internal/transport/http/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(ctl *Controller) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(cors.Default())

	router.GET("/health", ctl.Health)

	portfolio := router.Group("/portfolio")
	{
		portfolio.GET("/summary", ctl.GetSummary)
		portfolio.GET("/transactions", ctl.ListTransactions)
		portfolio.POST("/transactions", ctl.AddTransaction)
		portfolio.DELETE("/transactions/:id", ctl.DeleteTransaction)
		portfolio.POST("/snapshot", ctl.TakeSnapshot)
		portfolio.GET("/history", ctl.GetHistory)
		portfolio.GET("/report", ctl.ExportReport)
	}

	market := router.Group("/market")
	{
		market.GET("/symbols", ctl.ListSymbols)
		market.POST("/update", ctl.RefreshPrices)
	}

	router.GET("/settings", ctl.GetSettings)
	router.PUT("/settings", ctl.UpdateSettings)

	return router
}
