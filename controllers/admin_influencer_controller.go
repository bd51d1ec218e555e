package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/models"
	"github.com/rstferramentas/affiliatehub/utils"
)

// ListInfluencers returns all influencer accounts, newest first
func ListInfluencers(c *gin.Context) {
	utils.LogInfo("ListInfluencers called")

	var influencers []models.User
	if err := config.DB.Where("role = ?", models.RoleInfluencer).
		Order("created_at DESC").
		Find(&influencers).Error; err != nil {
		utils.LogError("Failed to fetch influencers: %v", err)
		utils.InternalServerError(c, "Failed to fetch influencers", nil)
		return
	}

	utils.Success(c, "Influencers retrieved successfully", gin.H{"influencers": influencers})
}

// CreateInfluencerRequest represents the request body for creating an influencer
type CreateInfluencerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// CreateInfluencer registers a new influencer account
func CreateInfluencer(c *gin.Context) {
	utils.LogInfo("CreateInfluencer called")

	var req CreateInfluencerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid influencer request: %v", err)
		utils.BadRequest(c, "Name and email are required", err.Error())
		return
	}

	influencer := models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  models.RoleInfluencer,
	}

	var existing models.User
	if err := config.DB.Where("email = ?", influencer.Email).First(&existing).Error; err == nil {
		utils.LogError("Influencer email already registered: %s", influencer.Email)
		utils.Conflict(c, "Email already registered", nil)
		return
	}

	if err := config.DB.Create(&influencer).Error; err != nil {
		utils.LogError("Failed to create influencer: %v", err)
		utils.InternalServerError(c, "Failed to create influencer", nil)
		return
	}

	utils.LogInfo("Created influencer %s (id %d)", influencer.Email, influencer.ID)
	utils.Created(c, "Influencer created successfully", gin.H{
		"id":    influencer.ID,
		"name":  influencer.Name,
		"email": influencer.Email,
	})
}

// GetInfluencer returns one influencer with their discount codes
func GetInfluencer(c *gin.Context) {
	utils.LogInfo("GetInfluencer called")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid influencer id", nil)
		return
	}

	var influencer models.User
	if err := config.DB.Preload("DiscountCodes").
		Where("role = ?", models.RoleInfluencer).
		First(&influencer, uint(id)).Error; err != nil {
		utils.LogError("Influencer %d not found: %v", id, err)
		utils.NotFound(c, "Influencer not found")
		return
	}

	utils.Success(c, "Influencer retrieved successfully", gin.H{"influencer": influencer})
}

// AddDiscountCodeRequest represents the request body for attaching a code
type AddDiscountCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// AddDiscountCode attaches a store voucher code to an influencer. The code
// becomes an attribution key for order sync.
func AddDiscountCode(c *gin.Context) {
	utils.LogInfo("AddDiscountCode called")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid influencer id", nil)
		return
	}

	var req AddDiscountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid discount code request: %v", err)
		utils.BadRequest(c, "Code is required", err.Error())
		return
	}

	var influencer models.User
	if err := config.DB.Where("role = ?", models.RoleInfluencer).
		First(&influencer, uint(id)).Error; err != nil {
		utils.NotFound(c, "Influencer not found")
		return
	}

	code := models.DiscountCode{
		UserID: influencer.ID,
		Code:   strings.TrimSpace(req.Code),
	}

	var existing models.DiscountCode
	if err := config.DB.Where("code = ?", code.Code).First(&existing).Error; err == nil {
		utils.LogError("Discount code already in use: %s", code.Code)
		utils.Conflict(c, "Code already assigned", nil)
		return
	}

	if err := config.DB.Create(&code).Error; err != nil {
		utils.LogError("Failed to create discount code: %v", err)
		utils.InternalServerError(c, "Failed to add code", nil)
		return
	}

	utils.LogInfo("Added discount code %s to influencer %d", code.Code, influencer.ID)
	utils.Created(c, "Code added successfully", gin.H{
		"id":   code.ID,
		"code": code.Code,
	})
}

// RemoveDiscountCode detaches a voucher code from its influencer
func RemoveDiscountCode(c *gin.Context) {
	utils.LogInfo("RemoveDiscountCode called")

	codeID, err := strconv.ParseUint(c.Param("codeId"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid code id", nil)
		return
	}

	var code models.DiscountCode
	if err := config.DB.First(&code, uint(codeID)).Error; err != nil {
		utils.NotFound(c, "Code not found")
		return
	}

	if err := config.DB.Delete(&code).Error; err != nil {
		utils.LogError("Failed to delete discount code %d: %v", codeID, err)
		utils.InternalServerError(c, "Failed to remove code", nil)
		return
	}

	utils.LogInfo("Removed discount code %d", codeID)
	utils.Success(c, "Code removed successfully", nil)
}
