package main

import (
	"log"

	"cubis-academy-backend/shared/config"
	"cubis-academy-backend/shared/database"
)

// Drops and recreates every subsystem table. Development use only - session
// rows are the audit trail and production never hard-deletes them.
func main() {
	config.LoadConfig()

	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	db := database.GetDB()
	migrator := db.Migrator()

	// Drop in reverse dependency order
	models := database.MigratedModels()
	for i := len(models) - 1; i >= 0; i-- {
		if migrator.HasTable(models[i]) {
			if err := migrator.DropTable(models[i]); err != nil {
				log.Fatalf("Failed to drop table for %T: %v", models[i], err)
			}
			log.Printf("🗑️  Dropped table for %T", models[i])
		}
	}

	// Recreate
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			log.Fatalf("Failed to migrate %T: %v", model, err)
		}
	}

	log.Println("✅ Database reset completed")
}
