package handler

import (
	"net/http"
	"time"

	"github.com/Baaaki/market-square/internal/broker"
	"github.com/Baaaki/market-square/internal/middleware"
	"github.com/Baaaki/market-square/internal/models"
	"github.com/Baaaki/market-square/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig wires the HTTP surface. A nil Broker leaves /api/feed
// unregistered.
type RouterConfig struct {
	AuthService          *service.AuthService
	ListingService       *service.ListingService
	Broker               broker.ListingBroker
	JWTSecret            string
	TrustIdentityHeaders bool
	CORSAllowOrigins     []string
	IsProduction         bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		cors.New(corsConfig(cfg.CORSAllowOrigins)),
		middleware.SecurityHeadersMiddleware(),
		middleware.HSTSMiddleware(cfg.IsProduction),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(cfg.AuthService)
	adminHandler := NewAdminHandler(cfg.AuthService)
	items := NewListingHandler(models.KindItem, cfg.ListingService)
	music := NewListingHandler(models.KindMusic, cfg.ListingService)

	api := router.Group("/api")
	api.Use(middleware.Identity(cfg.JWTSecret, cfg.TrustIdentityHeaders))
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/users", adminHandler.GetAllUsers)
		}

		registerListingRoutes(api, "items", items)
		registerListingRoutes(api, "music", music)

		if cfg.Broker != nil {
			feed := NewFeedHandler(cfg.Broker, originChecker(cfg.CORSAllowOrigins))
			api.GET("/feed", feed.Stream)
		}
	}

	return router
}

func registerListingRoutes(api *gin.RouterGroup, path string, h *ListingHandler) {
	api.GET("/"+path, h.List)
	api.POST("/"+path, h.Create)
	api.GET("/"+path+"/:id", h.Get)
	api.DELETE("/"+path+"/:id", middleware.RequireIdentity(), h.Delete)
	api.GET("/users/:id/"+path, h.ListByUser)
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderUserID, middleware.HeaderUserRole},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if allowsAnyOrigin(origins) {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return config
}

// originChecker applies the CORS origin list to websocket upgrades.
func originChecker(origins []string) func(string) bool {
	if allowsAnyOrigin(origins) {
		return nil
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(origin string) bool {
		_, ok := allowed[origin]
		return ok
	}
}
