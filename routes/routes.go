package routes

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/controllers"
	"github.com/rstferramentas/affiliatehub/utils"
)

// SetupRouter initializes and returns the Gin router with all routes.
// Middleware must be attached before any route group; gin freezes each
// route's handler chain at registration.
func SetupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 4, // 4 hours
		Path:     "/",
		Secure:   cfg.Env == "production",
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("affiliatehub", store))

	api := router.Group("/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login/send-code", controllers.SendLoginCode)
			auth.POST("/login/verify", controllers.VerifyLoginCode)
			auth.POST("/logout", controllers.Logout)
		}

		initAdminRoutes(api)
		initInfluencerRoutes(api)
	}

	return router
}
