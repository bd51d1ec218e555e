package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/services"
	"github.com/rstferramentas/affiliatehub/utils"
)

// GetPendingPayouts lists all pending commissions grouped by influencer
func GetPendingPayouts(c *gin.Context) {
	utils.LogInfo("GetPendingPayouts called")

	payouts, err := services.GetPendingPayouts(config.DB)
	if err != nil {
		utils.LogError("Failed to fetch pending payouts: %v", err)
		utils.InternalServerError(c, "Failed to fetch payouts", nil)
		return
	}

	utils.Success(c, "Pending payouts retrieved successfully", gin.H{"payouts": payouts})
}

// MarkPaidRequest represents the set of commissions to settle
type MarkPaidRequest struct {
	CommissionIDs []uint `json:"commission_ids" binding:"required,min=1"`
}

// MarkCommissionsPaid settles the selected pending commissions. Commissions
// already paid are left untouched.
func MarkCommissionsPaid(c *gin.Context) {
	utils.LogInfo("MarkCommissionsPaid called")

	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid mark-paid request: %v", err)
		utils.BadRequest(c, "Select at least one commission", err.Error())
		return
	}

	updated, err := services.MarkCommissionsPaid(config.DB, req.CommissionIDs)
	if err != nil {
		utils.LogError("Failed to mark commissions paid: %v", err)
		utils.InternalServerError(c, "Failed to mark commissions paid", nil)
		return
	}

	utils.LogInfo("Marked %d commissions as paid", updated)
	utils.Success(c, "Commissions marked as paid", gin.H{"updated": updated})
}
