package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/models"
	"github.com/rstferramentas/affiliatehub/utils"
)

// AuthMiddleware resolves the current user from the session cookie or, for
// API clients, a bearer token, and stores it in the context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromSession(c)
		if !ok {
			userID, ok = userIDFromBearer(c)
		}
		if !ok {
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		var user models.User
		if err := config.DB.First(&user, userID).Error; err != nil {
			utils.LogError("Authenticated user %d not found: %v", userID, err)
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// AdminMiddleware restricts the route to administrators. Must run after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			utils.Unauthorized(c, "User not found in context")
			c.Abort()
			return
		}

		userModel, ok := user.(models.User)
		if !ok || userModel.Role != models.RoleAdmin {
			utils.LogError("Non-admin user attempted admin access")
			utils.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

func userIDFromSession(c *gin.Context) (uint, bool) {
	session := sessions.Default(c)
	raw := session.Get("user_id")
	if raw == nil {
		return 0, false
	}
	userID, ok := raw.(uint)
	return userID, ok
}

func userIDFromBearer(c *gin.Context) (uint, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return 0, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	userID, err := utils.ValidateToken(tokenString)
	if err != nil {
		utils.LogDebug("Bearer token rejected: %v", err)
		return 0, false
	}
	return userID, true
}

// CurrentUser fetches the user set by AuthMiddleware
func CurrentUser(c *gin.Context) (models.User, bool) {
	raw, exists := c.Get("user")
	if !exists {
		return models.User{}, false
	}
	user, ok := raw.(models.User)
	return user, ok
}
