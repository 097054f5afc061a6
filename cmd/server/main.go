package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Baaaki/market-square/internal/broker"
	"github.com/Baaaki/market-square/internal/config"
	"github.com/Baaaki/market-square/internal/database"
	"github.com/Baaaki/market-square/internal/handler"
	"github.com/Baaaki/market-square/internal/repository"
	"github.com/Baaaki/market-square/internal/service"
	"github.com/Baaaki/market-square/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Log.Info("Config loaded", zap.Stringer("config", cfg))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.Connect(cfg)
	defer database.Close(database.DB)

	if err := database.Migrate(database.DB); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if cfg.SeedAccounts {
		if _, err := database.Seed(database.DB, database.DefaultSeedAccounts); err != nil {
			logger.Log.Fatal("Failed to seed accounts", zap.Error(err))
		}
	}

	// Listing events go to Redis when configured; the feed exists only then.
	var listingBroker broker.ListingBroker
	if cfg.RedisURL != "" {
		redisBroker, err := broker.NewRedisListingBroker(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Failed to initialize Redis broker", zap.Error(err))
		}
		defer redisBroker.Close()
		listingBroker = redisBroker
	}

	userRepo := repository.NewUserRepository(database.DB)
	listingRepo := repository.NewListingRepository(database.DB)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	listingService := service.NewListingService(listingRepo, userRepo, listingBroker)

	router := handler.NewRouter(handler.RouterConfig{
		AuthService:          authService,
		ListingService:       listingService,
		Broker:               listingBroker,
		JWTSecret:            cfg.JWTSecret,
		TrustIdentityHeaders: cfg.TrustIdentityHeaders,
		CORSAllowOrigins:     cfg.CORSAllowOrigins,
		IsProduction:         cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server starting", zap.String("addr", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
