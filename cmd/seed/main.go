package main

import (
	"log"

	"cubis-academy-backend/shared/config"
	"cubis-academy-backend/shared/database"
)

func main() {
	config.LoadConfig()

	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	if err := database.SeedDatabase(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	log.Println("✅ Seeding finished")
}
