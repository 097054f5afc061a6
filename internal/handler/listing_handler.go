package handler

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Baaaki/market-square/internal/middleware"
	"github.com/Baaaki/market-square/internal/models"
	"github.com/Baaaki/market-square/internal/repository"
	"github.com/Baaaki/market-square/internal/service"
	"github.com/gin-gonic/gin"
)

// ListingHandler serves one listing kind. The item and music routes are two
// instances of it.
type ListingHandler struct {
	kind           models.Kind
	variant        models.Variant
	listingService *service.ListingService
}

func NewListingHandler(kind models.Kind, listingService *service.ListingService) *ListingHandler {
	variant, _ := models.VariantOf(kind)
	return &ListingHandler{
		kind:           kind,
		variant:        variant,
		listingService: listingService,
	}
}

// CreateListingRequest is the body of a create call. Fields that do not
// belong to the handler's kind are ignored.
type CreateListingRequest struct {
	UserID      string   `json:"user_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *Price   `json:"price"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Genre       string   `json:"genre"`
	Tempo       string   `json:"tempo"`
	Mood        string   `json:"mood"`
	MusicURL    string   `json:"music_url"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
}

// Price accepts a JSON number or a numeric string such as "12.50".
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("price: %s is not a number", data)
	}
	*p = Price(v)
	return nil
}

func (r CreateListingRequest) attributes() map[string]string {
	return map[string]string{
		"category":  r.Category,
		"condition": r.Condition,
		"genre":     r.Genre,
		"tempo":     r.Tempo,
		"mood":      r.Mood,
		"music_url": r.MusicURL,
		"location":  r.Location,
	}
}

func views(listings []models.Listing, withSeller bool) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(listings))
	for i := range listings {
		result = append(result, listings[i].View(withSeller))
	}
	return result
}

// GET /api/items, GET /api/music
func (h *ListingHandler) List(c *gin.Context) {
	filter := repository.ListingFilter{
		Query:      c.Query("q"),
		Attributes: make(map[string]string, len(h.variant.Filters)),
	}
	for _, name := range h.variant.Filters {
		if v := c.Query(name); v != "" {
			filter.Attributes[name] = v
		}
	}

	listings, err := h.listingService.List(c.Request.Context(), h.kind, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, views(listings, true))
}

// GET /api/items/:id, GET /api/music/:id
func (h *ListingHandler) Get(c *gin.Context) {
	listing, err := h.listingService.Get(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing.View(true))
}

// POST /api/items, POST /api/music
func (h *ListingHandler) Create(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	if req.UserID == "" {
		if identity, ok := middleware.GetIdentity(c); ok {
			req.UserID = identity.UserID
		}
	}

	listing, err := h.listingService.Create(c.Request.Context(), h.kind, service.CreateListingInput{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Price:       (*float64)(req.Price),
		Attributes:  req.attributes(),
		Images:      req.Images,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing.View(false))
}

// DELETE /api/items/:id, DELETE /api/music/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.listingService.Delete(c.Request.Context(), h.kind, c.Param("id"), identity); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// GET /api/users/:id/items, GET /api/users/:id/music
func (h *ListingHandler) ListByUser(c *gin.Context) {
	listings, err := h.listingService.ListByUser(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, views(listings, false))
}
