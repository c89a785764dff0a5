package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/services"
)

// RegisterLedgerRoutes mounts the ledger API on an /api/v1 group.
func RegisterLedgerRoutes(v1 *gin.RouterGroup, service services.LedgerService) {
	propertyHandler := NewPropertyHandler(service)
	investmentHandler := NewInvestmentHandler(service)
	platformHandler := NewPlatformHandler(service)

	properties := v1.Group("/properties")
	{
		properties.POST("", propertyHandler.Create)
		properties.GET("", propertyHandler.List)
		properties.GET("/:id", propertyHandler.Get)
		properties.PATCH("/:id/status", propertyHandler.UpdateStatus)
		properties.POST("/:id/cancel", propertyHandler.Cancel)

		properties.POST("/:id/investments", investmentHandler.Invest)
		properties.GET("/:id/investments", investmentHandler.List)
		properties.POST("/:id/withdraw", investmentHandler.Withdraw)
		properties.POST("/:id/refund", investmentHandler.Refund)
	}

	investors := v1.Group("/investors/:account")
	{
		investors.GET("/holdings/:id", investmentHandler.Holdings)
		investors.GET("/portfolio", investmentHandler.Portfolio)
	}

	platform := v1.Group("/platform")
	{
		platform.GET("", platformHandler.Summary)
		platform.POST("/treasury/withdraw", platformHandler.WithdrawTreasury)
	}
}
