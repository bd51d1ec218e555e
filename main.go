package main

import (
	"log"
	"time"

	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/routes"
	"github.com/rstferramentas/affiliatehub/services"
	"github.com/rstferramentas/affiliatehub/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Seed the administrator account
	if err := config.EnsureAdminUser(cfg); err != nil {
		utils.LogError("Failed to seed admin user: %v", err)
		log.Fatal("Failed to seed admin user:", err)
	}

	// Wire the order sync pipeline and its schedule
	services.InitOrderSync(config.DB, cfg)
	syncJob := services.NewOrderSyncJob(services.OrderSync, time.Duration(cfg.SyncIntervalMinutes)*time.Minute)
	syncJob.Start()
	defer syncJob.Stop()

	// Set up router with middleware
	router := routes.SetupRouter(cfg)

	utils.LogInfo("Server starting on port %s", cfg.Port)
	// Start server
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
