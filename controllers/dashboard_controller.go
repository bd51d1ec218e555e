package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/middleware"
	"github.com/rstferramentas/affiliatehub/models"
	"github.com/rstferramentas/affiliatehub/services"
	"github.com/rstferramentas/affiliatehub/utils"
)

// Dashboard returns commission totals for the current user: global totals
// for admins, own totals for influencers
func Dashboard(c *gin.Context) {
	utils.LogInfo("Dashboard called")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "Please login for access")
		return
	}

	var totals *services.CommissionTotals
	var err error
	if user.Role == models.RoleAdmin {
		totals, err = services.GetTotalsForAdmin(config.DB)
	} else {
		totals, err = services.GetTotalsForInfluencer(config.DB, user.ID)
	}
	if err != nil {
		utils.LogError("Failed to compute dashboard totals: %v", err)
		utils.InternalServerError(c, "Failed to compute totals", nil)
		return
	}

	utils.Success(c, "Dashboard totals retrieved successfully", gin.H{
		"role":   user.Role,
		"totals": totals,
	})
}
