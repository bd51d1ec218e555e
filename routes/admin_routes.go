package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/controllers"
	"github.com/rstferramentas/affiliatehub/middleware"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		// Influencer management
		admin.GET("/influencers", controllers.ListInfluencers)
		admin.POST("/influencers", controllers.CreateInfluencer)
		admin.GET("/influencers/:id", controllers.GetInfluencer)
		admin.POST("/influencers/:id/codes", controllers.AddDiscountCode)
		admin.DELETE("/influencers/:id/codes/:codeId", controllers.RemoveDiscountCode)

		// Brand management
		admin.GET("/brands", controllers.ListBrands)
		admin.POST("/brands/sync", controllers.SyncBrands)

		// Commission rules
		admin.GET("/rules", controllers.ListRules)
		admin.POST("/rules", controllers.UpsertCommissionRule)
		admin.DELETE("/rules/:id", controllers.DeleteCommissionRule)

		// Payouts
		admin.GET("/payouts", controllers.GetPendingPayouts)
		admin.POST("/payouts/mark-paid", controllers.MarkCommissionsPaid)
		admin.GET("/payouts/export/excel", controllers.DownloadPayoutReportExcel)
		admin.GET("/payouts/export/pdf", controllers.DownloadPayoutReportPDF)

		// Order sync
		admin.POST("/orders/sync", controllers.SyncOrdersNow)
	}
}
