package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Baaaki/market-square/internal/models"
	"github.com/Baaaki/market-square/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedAccount is a fixed account created at bootstrap. An empty Password
// means the password equals the username.
type SeedAccount struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

var DefaultSeedAccounts = []SeedAccount{
	{Username: "muser", Email: "muser@example.com", Role: models.RoleUser},
	{Username: "mvc", Email: "mvc@example.com", Role: models.RoleAdmin},
}

// Seed inserts every account that does not exist yet, looked up by username.
// Running it again is a no-op. It returns the number of accounts created.
func Seed(db *gorm.DB, accounts []SeedAccount) (int, error) {
	created := 0

	for _, acc := range accounts {
		var existing models.User
		err := db.Where("username = ?", acc.Username).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("look up seed account %s: %w", acc.Username, err)
		}

		password := acc.Password
		if password == "" {
			password = acc.Username
		}

		user := models.User{
			ID:           uuid.New().String(),
			Username:     acc.Username,
			Email:        acc.Email,
			PasswordHash: utils.HashPassword(password),
			Role:         acc.Role,
			CreatedAt:    time.Now(),
		}
		if err := db.Create(&user).Error; err != nil {
			return created, fmt.Errorf("create seed account %s: %w", acc.Username, err)
		}

		log.Printf("Seeded account %s (role=%s)", acc.Username, acc.Role)
		created++
	}

	return created, nil
}
