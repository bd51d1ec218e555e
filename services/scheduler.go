package services

import (
	"context"
	"errors"
	"time"

	"github.com/rstferramentas/affiliatehub/utils"
)

// OrderSyncJob triggers the sync pipeline on a fixed interval. Ticks that
// land while a run is still in flight are dropped, not queued.
type OrderSyncJob struct {
	service  *OrderSyncService
	interval time.Duration
	cancel   context.CancelFunc
}

// NewOrderSyncJob creates the job; the interval comes from configuration
func NewOrderSyncJob(service *OrderSyncService, interval time.Duration) *OrderSyncJob {
	return &OrderSyncJob{service: service, interval: interval}
}

// Start launches the ticker loop in its own goroutine
func (j *OrderSyncJob) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel

	utils.LogInfo("Order sync job scheduled every %v", j.interval)

	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				utils.LogInfo("Order sync job stopped")
				return
			case <-ticker.C:
				j.runOnce()
			}
		}
	}()
}

// Stop ends the ticker loop. An in-flight run is not interrupted.
func (j *OrderSyncJob) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
}

func (j *OrderSyncJob) runOnce() {
	utils.LogInfo("Order sync job: starting scheduled run")

	imported, err := j.service.SyncOrders()
	if errors.Is(err, ErrSyncAlreadyRunning) {
		utils.LogInfo("Order sync job: previous run still in progress, skipping tick")
		return
	}
	if err != nil {
		utils.LogError("Order sync job: run failed: %v", err)
		return
	}

	utils.LogInfo("Order sync job: finished, imported %d orders", imported)
}
