package models

import (
	"time"
)

// Kind tags which variant a listing belongs to.
type Kind string

const (
	KindItem  Kind = "item"
	KindMusic Kind = "music"
)

// Variant is the attribute schema of one listing kind. Attributes are the
// variant-specific columns in response order; Filters are the attributes that
// list queries accept as exact-match filters.
type Variant struct {
	Kind       Kind
	Attributes []string
	Filters    []string
}

var variants = map[Kind]Variant{
	KindItem: {
		Kind:       KindItem,
		Attributes: []string{"category", "condition", "location"},
		Filters:    []string{"category", "condition"},
	},
	KindMusic: {
		Kind:       KindMusic,
		Attributes: []string{"genre", "tempo", "mood", "music_url", "location"},
		Filters:    []string{"genre", "tempo", "mood"},
	},
}

// VariantOf returns the schema for kind and whether kind is known.
func VariantOf(kind Kind) (Variant, bool) {
	v, ok := variants[kind]
	return v, ok
}

// Listing is a for-sale entry. Both variants share the items table; columns
// that do not belong to a listing's kind stay empty.
type Listing struct {
	ID          string  `gorm:"type:varchar(36);primaryKey"`
	Kind        Kind    `gorm:"type:varchar(10);not null;index"`
	UserID      string  `gorm:"type:varchar(36);not null;index"`
	Title       string  `gorm:"not null"`
	Description string  `gorm:"type:text;not null"`
	Price       float64 `gorm:"not null"`

	Category  string
	Condition string
	Genre     string `gorm:"index"`
	Tempo     string
	Mood      string
	MusicURL  string `gorm:"column:music_url"`
	Location  string

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// Filled by list/get queries joining users; never stored.
	SellerUsername string `gorm:"->;-:migration"`

	User   User    `gorm:"foreignKey:UserID"`
	Images []Image `gorm:"foreignKey:ItemID"`
}

func (Listing) TableName() string {
	return "items"
}

// Attribute returns the value of a variant attribute by column name.
func (l *Listing) Attribute(name string) string {
	switch name {
	case "category":
		return l.Category
	case "condition":
		return l.Condition
	case "genre":
		return l.Genre
	case "tempo":
		return l.Tempo
	case "mood":
		return l.Mood
	case "music_url":
		return l.MusicURL
	case "location":
		return l.Location
	}
	return ""
}

// SetAttribute sets a variant attribute by column name. Unknown names are
// ignored.
func (l *Listing) SetAttribute(name, value string) {
	switch name {
	case "category":
		l.Category = value
	case "condition":
		l.Condition = value
	case "genre":
		l.Genre = value
	case "tempo":
		l.Tempo = value
	case "mood":
		l.Mood = value
	case "music_url":
		l.MusicURL = value
	case "location":
		l.Location = value
	}
}

// ImageURLs returns the image URLs in insertion order.
func (l *Listing) ImageURLs() []string {
	urls := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

// View shapes the listing as its JSON attribute dictionary: the common
// fields, the variant's attributes and the images array.
func (l *Listing) View(withSeller bool) map[string]interface{} {
	view := map[string]interface{}{
		"id":          l.ID,
		"user_id":     l.UserID,
		"title":       l.Title,
		"description": l.Description,
		"price":       l.Price,
		"created_at":  l.CreatedAt,
		"updated_at":  l.UpdatedAt,
		"images":      l.ImageURLs(),
	}
	if v, ok := VariantOf(l.Kind); ok {
		for _, attr := range v.Attributes {
			view[attr] = l.Attribute(attr)
		}
	}
	if withSeller {
		view["seller_username"] = l.SellerUsername
	}
	return view
}

type Image struct {
	ID       string `gorm:"type:varchar(36);primaryKey"`
	ItemID   string `gorm:"type:varchar(36);not null;index"`
	URL      string `gorm:"not null"`
	Position int    `gorm:"not null;default:0"`
}
