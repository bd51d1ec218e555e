package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/models"
	"github.com/rstferramentas/affiliatehub/services"
	"github.com/rstferramentas/affiliatehub/utils"
)

// ListBrands returns all brands known to the dashboard
func ListBrands(c *gin.Context) {
	utils.LogInfo("ListBrands called")

	var brands []models.Brand
	if err := config.DB.Order("name").Find(&brands).Error; err != nil {
		utils.LogError("Failed to fetch brands: %v", err)
		utils.InternalServerError(c, "Failed to fetch brands", nil)
		return
	}

	utils.Success(c, "Brands retrieved successfully", gin.H{"brands": brands})
}

// SyncBrands pulls the manufacturer list from the store and upserts it
func SyncBrands(c *gin.Context) {
	utils.LogInfo("SyncBrands called")

	imported, err := services.OrderSync.SyncBrands()
	if err != nil {
		if errors.Is(err, services.ErrSyncConfigMissing) {
			utils.LogError("Brand sync requested without store credentials")
			utils.ServiceUnavailable(c, err.Error())
			return
		}
		utils.LogError("Brand sync failed: %v", err)
		utils.InternalServerError(c, "Brand sync failed", err.Error())
		return
	}

	utils.LogInfo("Brand sync imported %d brands", imported)
	utils.Success(c, "Brands synchronized", gin.H{"imported": imported})
}
