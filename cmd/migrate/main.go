package main

import (
	"ecommerce_backend/internal/config"  // Custom import path (Config)
	"ecommerce_backend/internal/db"      // Custom import path (Database)
	"ecommerce_backend/internal/logging" // Logger setup

	"github.com/sirupsen/logrus" // Structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	defer logging.Setup(cfg)()

	gdb, err := db.Open(cfg) // Connect using DB_DRIVER and the DSN settings
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("Migration completed.")
}
