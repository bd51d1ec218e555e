package controllers

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/models"
	"github.com/rstferramentas/affiliatehub/utils"
)

// SendLoginCodeRequest represents the request to start an email login
type SendLoginCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendLoginCode emails a one-time login code to a registered user
func SendLoginCode(c *gin.Context) {
	utils.LogInfo("SendLoginCode called")

	var req SendLoginCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid login request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.LogError("Login requested for unknown email: %s", req.Email)
		utils.NotFound(c, "Email not found")
		return
	}

	if err := utils.PurgeExpiredLoginCodes(config.DB); err != nil {
		utils.LogError("Failed to purge expired login codes: %v", err)
	}

	code := utils.GenerateLoginCode()
	if err := utils.StoreLoginCode(config.DB, user.Email, code); err != nil {
		utils.LogError("Failed to store login code for %s: %v", user.Email, err)
		utils.InternalServerError(c, "Failed to create login code", nil)
		return
	}

	if err := utils.SendLoginCode(user.Email, code); err != nil {
		if errors.Is(err, utils.ErrSMTPConfigMissing) {
			utils.LogError("Login code requested but SMTP is not configured")
			utils.ServiceUnavailable(c, "Email delivery is not configured. Set the SMTP settings and try again.")
			return
		}
		utils.LogError("Failed to send login code to %s: %v", user.Email, err)
		utils.InternalServerError(c, "Failed to send login code", nil)
		return
	}

	utils.LogInfo("Login code sent to %s", user.Email)
	utils.Success(c, "Login code sent by email", nil)
}

// VerifyLoginCodeRequest represents the second step of the email login
type VerifyLoginCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// VerifyLoginCode checks the one-time code, opens a session and returns a
// token for API clients
func VerifyLoginCode(c *gin.Context) {
	utils.LogInfo("VerifyLoginCode called")

	var req VerifyLoginCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid verify request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	valid, err := utils.VerifyLoginCode(config.DB, req.Email, req.Code)
	if err != nil {
		utils.LogError("Failed to verify login code for %s: %v", req.Email, err)
		utils.InternalServerError(c, "Failed to verify login code", nil)
		return
	}
	if !valid {
		utils.LogError("Invalid or expired login code for %s", req.Email)
		utils.Unauthorized(c, "Invalid or expired code")
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.LogError("User disappeared between code steps: %s", req.Email)
		utils.NotFound(c, "User not found")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("user_role", user.Role)
	if err := session.Save(); err != nil {
		utils.LogError("Failed to save session for %s: %v", user.Email, err)
		utils.InternalServerError(c, "Failed to open session", nil)
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Failed to generate token for %s: %v", user.Email, err)
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	utils.LogInfo("Login successful: %s", user.Email)
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Logout clears the session
func Logout(c *gin.Context) {
	utils.LogInfo("Logout called")

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		utils.LogError("Failed to clear session: %v", err)
	}

	utils.Success(c, "Logged out successfully", nil)
}
