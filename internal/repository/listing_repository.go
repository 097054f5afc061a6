package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Baaaki/market-square/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingFilter narrows a listing query. Every non-empty field is ANDed.
// Query is a case-insensitive substring matched against title or
// description; Attributes are exact matches on the variant's filter columns,
// other keys are ignored.
type ListingFilter struct {
	Query      string
	Attributes map[string]string
}

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func imagesInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the listing and its images in one transaction. Images are
// numbered in slice order.
func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(listing).Error; err != nil {
			return err
		}
		if len(listing.Images) == 0 {
			return nil
		}
		for i := range listing.Images {
			listing.Images[i].ItemID = listing.ID
			listing.Images[i].Position = i
		}
		return tx.Create(&listing.Images).Error
	})
}

// withSeller selects listings of kind joined with the owner's username.
func (r *ListingRepository) withSeller(ctx context.Context, kind models.Kind) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Select("items.*, users.username AS seller_username").
		Joins("JOIN users ON users.id = items.user_id").
		Where("items.kind = ?", kind).
		Preload("Images", imagesInOrder)
}

// GetByID returns (nil, nil) when no listing of kind has this id.
func (r *ListingRepository) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Listing, error) {
	var listing models.Listing
	err := r.withSeller(ctx, kind).Where("items.id = ?", id).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// GetOwnerID returns the owner of a listing without loading images or the
// seller. found is false when the listing does not exist.
func (r *ListingRepository) GetOwnerID(ctx context.Context, kind models.Kind, id string) (ownerID string, found bool, err error) {
	var listing models.Listing
	err = r.db.WithContext(ctx).
		Select("id", "user_id").
		Where("id = ? AND kind = ?", id, kind).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return listing.UserID, true, nil
}

// List returns listings of kind matching filter, most recent first.
func (r *ListingRepository) List(ctx context.Context, kind models.Kind, filter ListingFilter) ([]models.Listing, error) {
	variant, _ := models.VariantOf(kind)

	query := applyFilter(r.withSeller(ctx, kind), variant, filter)

	var listings []models.Listing
	err := query.Order("items.created_at DESC").Find(&listings).Error
	return listings, err
}

// ListByUser returns the listings of kind owned by userID, most recent first.
// The seller is not joined.
func (r *ListingRepository) ListByUser(ctx context.Context, kind models.Kind, userID string) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("kind = ? AND user_id = ?", kind, userID).
		Preload("Images", imagesInOrder).
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

// Delete removes the listing's images and then the listing in one
// transaction. The store does not enforce the images foreign key, so the
// order is what keeps image rows from being orphaned.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Listing{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ImageURLs returns the stored image URLs of a listing in order.
func (r *ListingRepository) ImageURLs(ctx context.Context, itemID string) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("item_id = ?", itemID).
		Order("position ASC").
		Pluck("url", &urls).Error
	return urls, err
}

func applyFilter(query *gorm.DB, variant models.Variant, filter ListingFilter) *gorm.DB {
	if filter.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Query)) + "%"
		query = query.Where(
			`(LOWER(items.title) LIKE ? ESCAPE '\' OR LOWER(items.description) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}
	for _, name := range variant.Filters {
		value := filter.Attributes[name]
		if value == "" {
			continue
		}
		query = query.Where(clause.Eq{
			Column: clause.Column{Table: "items", Name: name},
			Value:  value,
		})
	}
	return query
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
