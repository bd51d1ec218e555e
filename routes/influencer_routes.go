package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/controllers"
	"github.com/rstferramentas/affiliatehub/middleware"
)

// initInfluencerRoutes initializes the authenticated dashboard and report routes
func initInfluencerRoutes(router *gin.RouterGroup) {
	authed := router.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/dashboard", controllers.Dashboard)

		reports := authed.Group("/reports")
		{
			reports.GET("", controllers.MyTotals)
			reports.GET("/commissions", controllers.MyCommissions)
			reports.GET("/rules", controllers.MyRules)
		}
	}
}
