package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/models"
	"github.com/rstferramentas/affiliatehub/services"
	"github.com/rstferramentas/affiliatehub/utils"
)

// ListRules returns all commission rules with influencer and brand names
func ListRules(c *gin.Context) {
	utils.LogInfo("ListRules called")

	var rules []models.CommissionRule
	if err := config.DB.Preload("User").Preload("Brand").
		Joins("JOIN users ON users.id = commission_rules.user_id").
		Order("users.name").
		Find(&rules).Error; err != nil {
		utils.LogError("Failed to fetch rules: %v", err)
		utils.InternalServerError(c, "Failed to fetch rules", nil)
		return
	}

	utils.Success(c, "Rules retrieved successfully", gin.H{"rules": rules})
}

// UpsertRuleRequest represents the request body for creating or updating a rule
type UpsertRuleRequest struct {
	UserID               uint    `json:"user_id" binding:"required"`
	BrandID              *uint   `json:"brand_id"`
	CommissionFirst      float64 `json:"commission_first" binding:"required,gte=0,lte=100"`
	CommissionSubsequent float64 `json:"commission_subsequent" binding:"required,gte=0,lte=100"`
}

// UpsertCommissionRule creates or overwrites the rule for an (influencer,
// brand) pair. Omitting brand_id targets the influencer's default rule.
func UpsertCommissionRule(c *gin.Context) {
	utils.LogInfo("UpsertCommissionRule called")

	var req UpsertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid rule request: %v", err)
		utils.BadRequest(c, "Influencer and both percentages are required", err.Error())
		return
	}

	var influencer models.User
	if err := config.DB.Where("role = ?", models.RoleInfluencer).
		First(&influencer, req.UserID).Error; err != nil {
		utils.LogError("Rule references unknown influencer %d", req.UserID)
		utils.NotFound(c, "Influencer not found")
		return
	}

	if req.BrandID != nil {
		var brand models.Brand
		if err := config.DB.First(&brand, *req.BrandID).Error; err != nil {
			utils.LogError("Rule references unknown brand %d", *req.BrandID)
			utils.NotFound(c, "Brand not found")
			return
		}
	}

	rule, err := services.UpsertRule(config.DB, req.UserID, req.BrandID, req.CommissionFirst, req.CommissionSubsequent)
	if err != nil {
		utils.LogError("Failed to upsert rule: %v", err)
		utils.InternalServerError(c, "Failed to save rule", nil)
		return
	}

	utils.LogInfo("Saved rule %d for influencer %d", rule.ID, req.UserID)
	utils.Success(c, "Rule saved successfully", gin.H{
		"id":                    rule.ID,
		"user_id":               rule.UserID,
		"brand_id":              rule.BrandID,
		"commission_first":      rule.CommissionFirst,
		"commission_subsequent": rule.CommissionSubsequent,
	})
}

// DeleteCommissionRule removes a rule by id
func DeleteCommissionRule(c *gin.Context) {
	utils.LogInfo("DeleteCommissionRule called")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid rule id", nil)
		return
	}

	var rule models.CommissionRule
	if err := config.DB.First(&rule, uint(id)).Error; err != nil {
		utils.NotFound(c, "Rule not found")
		return
	}

	if err := config.DB.Delete(&rule).Error; err != nil {
		utils.LogError("Failed to delete rule %d: %v", id, err)
		utils.InternalServerError(c, "Failed to delete rule", nil)
		return
	}

	utils.LogInfo("Deleted rule %d", id)
	utils.Success(c, "Rule deleted successfully", nil)
}
