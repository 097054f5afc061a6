package service

import (
	"context"
	"errors"
	"time"

	"github.com/Baaaki/market-square/internal/broker"
	"github.com/Baaaki/market-square/internal/models"
	"github.com/Baaaki/market-square/internal/repository"
	"github.com/Baaaki/market-square/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateListingInput carries the caller-supplied fields of a new listing.
// Attributes holds the variant columns by name; Price is nil when absent.
type CreateListingInput struct {
	UserID      string
	Title       string
	Description string
	Price       *float64
	Attributes  map[string]string
	Images      []string
}

type ListingService struct {
	listingRepo *repository.ListingRepository
	userRepo    *repository.UserRepository
	broker      broker.ListingBroker
	now         func() time.Time
}

func NewListingService(
	listingRepo *repository.ListingRepository,
	userRepo *repository.UserRepository,
	b broker.ListingBroker,
) *ListingService {
	if b == nil {
		b = broker.NopBroker{}
	}
	return &ListingService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		broker:      b,
		now:         time.Now,
	}
}

func (s *ListingService) List(ctx context.Context, kind models.Kind, filter repository.ListingFilter) ([]models.Listing, error) {
	listings, err := s.listingRepo.List(ctx, kind, filter)
	if err != nil {
		logger.Log.Error("Failed to list listings",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return nil, err
	}
	return listings, nil
}

func (s *ListingService) Get(ctx context.Context, kind models.Kind, id string) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, kind, id)
	if err != nil {
		logger.Log.Error("Failed to get listing",
			zap.String("kind", string(kind)),
			zap.String("listing_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

func (s *ListingService) ListByUser(ctx context.Context, kind models.Kind, userID string) ([]models.Listing, error) {
	listings, err := s.listingRepo.ListByUser(ctx, kind, userID)
	if err != nil {
		logger.Log.Error("Failed to list user listings",
			zap.String("kind", string(kind)),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	return listings, nil
}

// Create validates input against the variant schema, stores the listing and
// its images in one transaction and returns the record with the supplied
// image URLs in order.
func (s *ListingService) Create(ctx context.Context, kind models.Kind, input CreateListingInput) (*models.Listing, error) {
	variant, ok := models.VariantOf(kind)
	if !ok {
		return nil, ErrListingNotFound
	}

	fields := [][2]string{
		{"user_id", input.UserID},
		{"title", input.Title},
		{"description", input.Description},
	}
	for _, attr := range variant.Attributes {
		fields = append(fields, [2]string{attr, input.Attributes[attr]})
	}
	missing := missingFields(fields)
	if input.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		logger.Log.Warn("Listing validation failed",
			zap.String("kind", string(kind)),
			zap.Strings("missing", missing),
		)
		return nil, ErrMissingFields
	}

	owner, err := s.userRepo.GetUserByID(ctx, input.UserID)
	if err != nil {
		logger.Log.Error("Failed to look up listing owner",
			zap.String("user_id", input.UserID),
			zap.Error(err),
		)
		return nil, err
	}
	if owner == nil {
		logger.Log.Warn("Listing owner does not exist",
			zap.String("user_id", input.UserID),
		)
		return nil, ErrUnknownOwner
	}

	now := s.now().UTC()
	listing := &models.Listing{
		ID:          uuid.NewString(),
		Kind:        kind,
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Price:       *input.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, attr := range variant.Attributes {
		listing.SetAttribute(attr, input.Attributes[attr])
	}
	listing.Images = make([]models.Image, 0, len(input.Images))
	for _, url := range input.Images {
		listing.Images = append(listing.Images, models.Image{
			ID:  uuid.NewString(),
			URL: url,
		})
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		logger.Log.Error("Failed to create listing",
			zap.String("kind", string(kind)),
			zap.String("user_id", input.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Listing created",
		zap.String("kind", string(kind)),
		zap.String("listing_id", listing.ID),
		zap.String("user_id", listing.UserID),
		zap.Int("images", len(listing.Images)),
	)

	s.publish(ctx, broker.EventListingCreated, listing)

	return listing, nil
}

// Delete removes a listing and its images. Only the owner or an admin may
// delete.
func (s *ListingService) Delete(ctx context.Context, kind models.Kind, id string, requester models.Identity) error {
	ownerID, found, err := s.listingRepo.GetOwnerID(ctx, kind, id)
	if err != nil {
		logger.Log.Error("Failed to look up listing owner",
			zap.String("listing_id", id),
			zap.Error(err),
		)
		return err
	}
	if !found {
		return ErrListingNotFound
	}

	if !requester.CanManage(ownerID) {
		logger.Log.Warn("Listing delete forbidden",
			zap.String("listing_id", id),
			zap.String("owner_id", ownerID),
			zap.String("requester_id", requester.UserID),
			zap.String("requester_role", string(requester.Role)),
		)
		return ErrForbidden
	}

	if err := s.listingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		logger.Log.Error("Failed to delete listing",
			zap.String("listing_id", id),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Listing deleted",
		zap.String("kind", string(kind)),
		zap.String("listing_id", id),
		zap.String("deleted_by", requester.UserID),
		zap.Bool("by_admin", requester.IsAdmin() && requester.UserID != ownerID),
	)

	s.publish(ctx, broker.EventListingDeleted, &models.Listing{ID: id, Kind: kind, UserID: ownerID})

	return nil
}

// publish sends a listing event. The write has already committed, so a
// broker failure is logged and not returned.
func (s *ListingService) publish(ctx context.Context, eventType broker.EventType, listing *models.Listing) {
	event := broker.NewListingEvent(eventType, listing, s.now())
	if err := s.broker.Publish(ctx, event); err != nil {
		logger.Log.Warn("Failed to publish listing event",
			zap.String("type", string(eventType)),
			zap.String("listing_id", listing.ID),
			zap.Error(err),
		)
	}
}
