package database

import (
	"fmt"
	"log"

	"cubis-academy-backend/shared/config"
	"cubis-academy-backend/shared/database/models"
	utils "cubis-academy-backend/shared/utils/auth"
)

// SeedDatabase seeds the database with initial data
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	if err := createSuperAdminFromConfig(); err != nil {
		return err
	}

	created, err := seedDemoUsers()
	if err != nil {
		return err
	}

	if created > 0 {
		log.Printf("✅ Database seeding completed (%d demo users created)", created)
	} else {
		log.Println("✅ Database seed data is up to date")
	}

	return nil
}

// createSuperAdminFromConfig creates the super admin account if missing
func createSuperAdminFromConfig() error {
	cfg := config.GetConfig()

	var existing models.User
	if err := DB.Where("email = ?", cfg.SuperAdminEmail).First(&existing).Error; err == nil {
		return nil
	}

	hashedPassword, err := utils.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash super admin password: %w", err)
	}

	admin := models.User{
		Email:     cfg.SuperAdminEmail,
		Password:  hashedPassword,
		FirstName: "Super",
		LastName:  "Admin",
		Status:    "ACTIVE",
	}

	if err := DB.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	log.Printf("✅ Super admin created: %s", cfg.SuperAdminEmail)
	return nil
}

// seedDemoUsers creates demo teacher/student accounts for local development
func seedDemoUsers() (int, error) {
	demoUsers := []struct {
		Email     string
		FirstName string
		LastName  string
	}{
		{Email: "teacher@cubisacademy.com", FirstName: "Demo", LastName: "Teacher"},
		{Email: "student@cubisacademy.com", FirstName: "Demo", LastName: "Student"},
	}

	created := 0
	for _, demo := range demoUsers {
		var existing models.User
		if err := DB.Where("email = ?", demo.Email).First(&existing).Error; err == nil {
			continue
		}

		hashedPassword, err := utils.HashPassword("demo1234")
		if err != nil {
			return created, fmt.Errorf("failed to hash demo password: %w", err)
		}

		user := models.User{
			Email:     demo.Email,
			Password:  hashedPassword,
			FirstName: demo.FirstName,
			LastName:  demo.LastName,
			Status:    "ACTIVE",
		}
		if err := DB.Create(&user).Error; err != nil {
			return created, fmt.Errorf("failed to create demo user %s: %w", demo.Email, err)
		}
		created++
	}

	return created, nil
}
