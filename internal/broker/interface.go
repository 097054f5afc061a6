package broker

import (
	"context"
	"time"

	"github.com/Baaaki/market-square/internal/models"
)

type EventType string

const (
	EventListingCreated EventType = "listing.created"
	EventListingDeleted EventType = "listing.deleted"
)

// ListingEvent is published after a listing write has committed.
type ListingEvent struct {
	Type      EventType   `json:"type"`
	Kind      models.Kind `json:"kind"`
	ListingID string      `json:"listing_id"`
	UserID    string      `json:"user_id"`
	Title     string      `json:"title,omitempty"`
	Price     float64     `json:"price,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewListingEvent stamps an event for listing at now.
func NewListingEvent(eventType EventType, listing *models.Listing, now time.Time) ListingEvent {
	return ListingEvent{
		Type:      eventType,
		Kind:      listing.Kind,
		ListingID: listing.ID,
		UserID:    listing.UserID,
		Title:     listing.Title,
		Price:     listing.Price,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// ListingBroker fans listing events out to feed subscribers and keeps a short
// backlog for clients that just connected.
type ListingBroker interface {
	Publish(ctx context.Context, event ListingEvent) error

	// Subscribe delivers events until ctx is cancelled, then closes the channel.
	Subscribe(ctx context.Context) (<-chan ListingEvent, error)

	// Recent returns up to limit of the latest events, newest first.
	Recent(ctx context.Context, limit int) ([]ListingEvent, error)

	Close() error
}

// NopBroker drops every event. It is used when no Redis is configured.
type NopBroker struct{}

func (NopBroker) Publish(context.Context, ListingEvent) error { return nil }

func (NopBroker) Subscribe(ctx context.Context) (<-chan ListingEvent, error) {
	ch := make(chan ListingEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (NopBroker) Recent(context.Context, int) ([]ListingEvent, error) { return nil, nil }

func (NopBroker) Close() error { return nil }
