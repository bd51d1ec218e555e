package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rstferramentas/affiliatehub/services"
	"github.com/rstferramentas/affiliatehub/utils"
)

// SyncOrdersNow triggers one sync pass outside the schedule. Returns the
// number of orders a commission was recorded for.
func SyncOrdersNow(c *gin.Context) {
	utils.LogInfo("SyncOrdersNow called")

	imported, err := services.OrderSync.SyncOrders()
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSyncConfigMissing):
			utils.LogError("Manual sync requested without store credentials")
			utils.ServiceUnavailable(c, err.Error())
		case errors.Is(err, services.ErrSyncAlreadyRunning):
			utils.LogInfo("Manual sync dropped, run already in progress")
			utils.Conflict(c, "A sync is already running", nil)
		default:
			utils.LogError("Manual sync failed: %v", err)
			utils.InternalServerError(c, "Order sync failed", err.Error())
		}
		return
	}

	utils.LogInfo("Manual sync imported %d orders", imported)
	utils.Success(c, "Orders synchronized", gin.H{"imported": imported})
}
