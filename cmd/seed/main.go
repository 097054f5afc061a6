package main

import (
	"log"
	"os"

	"github.com/Baaaki/market-square/internal/config"
	"github.com/Baaaki/market-square/internal/database"
	"github.com/Baaaki/market-square/internal/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database.Connect(cfg)
	defer database.Close(database.DB)

	if err := database.Migrate(database.DB); err != nil {
		log.Fatal(err)
	}

	accounts := append([]database.SeedAccount{}, database.DefaultSeedAccounts...)

	// Optional extra admin from the environment.
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	switch {
	case adminUsername != "" && adminEmail != "" && adminPassword != "":
		accounts = append(accounts, database.SeedAccount{
			Username: adminUsername,
			Email:    adminEmail,
			Password: adminPassword,
			Role:     models.RoleAdmin,
		})
	case adminUsername != "" || adminEmail != "" || adminPassword != "":
		log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD must be set together")
	}

	created, err := database.Seed(database.DB, accounts)
	if err != nil {
		log.Fatal("Failed to seed accounts:", err)
	}

	log.Printf("Seeding finished: %d created, %d already present", created, len(accounts)-created)
}
