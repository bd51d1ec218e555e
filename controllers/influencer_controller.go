package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/middleware"
	"github.com/rstferramentas/affiliatehub/models"
	"github.com/rstferramentas/affiliatehub/services"
	"github.com/rstferramentas/affiliatehub/utils"
)

// MyTotals returns the current influencer's pending and paid totals
func MyTotals(c *gin.Context) {
	utils.LogInfo("MyTotals called")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "Please login for access")
		return
	}

	totals, err := services.GetTotalsForInfluencer(config.DB, user.ID)
	if err != nil {
		utils.LogError("Failed to compute totals for influencer %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to compute totals", nil)
		return
	}

	utils.Success(c, "Totals retrieved successfully", gin.H{"totals": totals})
}

// MyCommissions returns the current influencer's commissions, newest first
func MyCommissions(c *gin.Context) {
	utils.LogInfo("MyCommissions called")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "Please login for access")
		return
	}

	commissions, err := services.ListCommissionsByInfluencer(config.DB, user.ID)
	if err != nil {
		utils.LogError("Failed to fetch commissions for influencer %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch commissions", nil)
		return
	}

	utils.Success(c, "Commissions retrieved successfully", gin.H{"commissions": commissions})
}

// MyRules returns the current influencer's commission rules with brand names
func MyRules(c *gin.Context) {
	utils.LogInfo("MyRules called")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "Please login for access")
		return
	}

	var rules []models.CommissionRule
	if err := config.DB.Preload("Brand").
		Where("user_id = ?", user.ID).
		Find(&rules).Error; err != nil {
		utils.LogError("Failed to fetch rules for influencer %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch rules", nil)
		return
	}

	utils.Success(c, "Rules retrieved successfully", gin.H{"rules": rules})
}
