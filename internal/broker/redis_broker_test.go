package broker

import (
	"context"
	"testing"
	"time"

	"github.com/Baaaki/market-square/internal/models"
	"github.com/Baaaki/market-square/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroker(t *testing.T) *RedisListingBroker {
	t.Helper()
	redis := testutil.SetupTestRedis(t)
	t.Cleanup(func() { redis.Teardown(t) })

	b, err := NewRedisListingBroker(context.Background(), redis.URL)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func testEvent(id string) ListingEvent {
	listing := &models.Listing{ID: id, Kind: models.KindItem, UserID: "user-1", Title: "Lamp", Price: 12.5}
	return NewListingEvent(EventListingCreated, listing, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
}

func TestNewListingEvent(t *testing.T) {
	event := testEvent("item-1")

	assert.Equal(t, EventListingCreated, event.Type)
	assert.Equal(t, models.KindItem, event.Kind)
	assert.Equal(t, "item-1", event.ListingID)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, "2024-01-02T03:04:05Z", event.Timestamp)
}

func TestRedisListingBroker_PublishSubscribe(t *testing.T) {
	b := newTestBroker(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := b.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, testEvent("item-1")))

	select {
	case got := <-events:
		assert.Equal(t, "item-1", got.ListingID)
		assert.Equal(t, EventListingCreated, got.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-events
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisListingBroker_RecentNewestFirst(t *testing.T) {
	b := newTestBroker(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, b.Publish(ctx, testEvent(id)))
	}

	recent, err := b.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ListingID)
	assert.Equal(t, "b", recent[1].ListingID)
}

func TestRedisListingBroker_RecentIsCapped(t *testing.T) {
	b := newTestBroker(t)
	ctx := context.Background()

	for i := 0; i < recentLimit+5; i++ {
		require.NoError(t, b.Publish(ctx, testEvent("x")))
	}

	recent, err := b.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, recentLimit)
}

func TestNewRedisListingBroker_BadURL(t *testing.T) {
	_, err := NewRedisListingBroker(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestNopBroker(t *testing.T) {
	var b ListingBroker = NopBroker{}
	ctx, cancel := context.WithCancel(context.Background())

	assert.NoError(t, b.Publish(ctx, testEvent("a")))
	recent, err := b.Recent(ctx, 10)
	assert.NoError(t, err)
	assert.Empty(t, recent)

	events, err := b.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("nop subscription not closed")
	}
}
