package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVariantOf(t *testing.T) {
	item, ok := VariantOf(KindItem)
	assert.True(t, ok)
	assert.Equal(t, []string{"category", "condition", "location"}, item.Attributes)
	assert.Equal(t, []string{"category", "condition"}, item.Filters)

	music, ok := VariantOf(KindMusic)
	assert.True(t, ok)
	assert.Equal(t, []string{"genre", "tempo", "mood", "music_url", "location"}, music.Attributes)
	assert.Equal(t, []string{"genre", "tempo", "mood"}, music.Filters)

	_, ok = VariantOf("furniture")
	assert.False(t, ok)
}

func TestListingAttributes(t *testing.T) {
	var l Listing
	for _, name := range []string{"category", "condition", "genre", "tempo", "mood", "music_url", "location"} {
		l.SetAttribute(name, name+"-value")
		assert.Equal(t, name+"-value", l.Attribute(name))
	}

	l.SetAttribute("title", "ignored")
	assert.Empty(t, l.Title)
	assert.Empty(t, l.Attribute("title"))
}

func TestListingView(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := Listing{
		ID:             "m1",
		Kind:           KindMusic,
		UserID:         "u1",
		Title:          "Song",
		Description:    "desc",
		Price:          3.5,
		Genre:          "jazz",
		Tempo:          "90",
		Mood:           "calm",
		MusicURL:       "https://music.example/song",
		Location:       "Austin, TX",
		Category:       "leftover",
		CreatedAt:      created,
		UpdatedAt:      created,
		SellerUsername: "alice",
		Images:         []Image{{URL: "x.png"}, {URL: "y.png"}},
	}

	view := l.View(true)
	assert.Equal(t, "m1", view["id"])
	assert.Equal(t, 3.5, view["price"])
	assert.Equal(t, "jazz", view["genre"])
	assert.Equal(t, "https://music.example/song", view["music_url"])
	assert.Equal(t, []string{"x.png", "y.png"}, view["images"])
	assert.Equal(t, "alice", view["seller_username"])
	assert.NotContains(t, view, "category")

	assert.NotContains(t, l.View(false), "seller_username")
}

func TestListingImageURLsNeverNil(t *testing.T) {
	var l Listing
	assert.NotNil(t, l.ImageURLs())
	assert.Empty(t, l.ImageURLs())
}

func TestIdentityCanManage(t *testing.T) {
	assert.True(t, Identity{UserID: "u1", Role: RoleUser}.CanManage("u1"))
	assert.False(t, Identity{UserID: "u2", Role: RoleUser}.CanManage("u1"))
	assert.True(t, Identity{UserID: "u2", Role: RoleAdmin}.CanManage("u1"))
	assert.False(t, Identity{}.CanManage(""))
}
