package testutil

import (
	"time"

	"github.com/Baaaki/market-square/internal/models"
	"github.com/Baaaki/market-square/internal/utils"
	"github.com/google/uuid"
)

// CreateTestUser builds a user with a digested password. It is not saved.
func CreateTestUser(username, email, password string, role models.Role) *models.User {
	return &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: utils.HashPassword(password),
		Role:         role,
		CreatedAt:    time.Now(),
	}
}

func DefaultTestUser() *models.User {
	return CreateTestUser("testuser", "test@example.com", "Test123456", models.RoleUser)
}

func DefaultAdminUser() *models.User {
	return CreateTestUser("admin", "admin@example.com", "Admin123456", models.RoleAdmin)
}

// CreateTestItem builds a generic-goods listing owned by userID.
func CreateTestItem(userID, title string, createdAt time.Time, imageURLs ...string) *models.Listing {
	createdAt = createdAt.UTC()
	listing := &models.Listing{
		ID:          uuid.New().String(),
		Kind:        models.KindItem,
		UserID:      userID,
		Title:       title,
		Description: title + " in good shape",
		Price:       25,
		Category:    "Electronics",
		Condition:   "good",
		Location:    "San Francisco, CA",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	listing.Images = imagesFor(listing.ID, imageURLs)
	return listing
}

// CreateTestTrack builds a music listing owned by userID.
func CreateTestTrack(userID, title, genre, tempo, mood string, createdAt time.Time) *models.Listing {
	createdAt = createdAt.UTC()
	return &models.Listing{
		ID:          uuid.New().String(),
		Kind:        models.KindMusic,
		UserID:      userID,
		Title:       title,
		Description: "A " + mood + " " + genre + " track",
		Price:       9.99,
		Genre:       genre,
		Tempo:       tempo,
		Mood:        mood,
		MusicURL:    "https://music.example/" + title,
		Location:    "Austin, TX",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func imagesFor(itemID string, urls []string) []models.Image {
	images := make([]models.Image, 0, len(urls))
	for i, url := range urls {
		images = append(images, models.Image{
			ID:       uuid.New().String(),
			ItemID:   itemID,
			URL:      url,
			Position: i,
		})
	}
	return images
}
