// File: meetbridge/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetbridge/config"
	"meetbridge/database"
	integrationRepo "meetbridge/database/repository/integration"
	"meetbridge/handlers"
	"meetbridge/middleware"
	"meetbridge/routes"
	"meetbridge/services/booking"
	"meetbridge/services/notification"
	"meetbridge/services/oauth"
	"meetbridge/services/platform"
	"meetbridge/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	integRepo := integrationRepo.NewMongoIntegrationRepo()

	// services.
	registry := platform.NewDefaultRegistry(integRepo)
	notificationService := notification.NewDefaultNotificationService(integRepo)
	bookingService := &booking.DefaultBookingService{
		Registry:        registry,
		NotificationSvc: notificationService,
		Clock:           utils.NewRealClock(),
		AdapterTimeout:  time.Duration(config.AppConfig.AdapterTimeoutSec) * time.Second,
		DefaultTimezone: config.AppConfig.DefaultTimezone,
	}
	oauthService := oauth.NewDefaultOAuthService(integRepo, utils.GetStateCacheClient())

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	integrationHandler := handlers.NewIntegrationHandler(integRepo, oauthService, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		BookMeeting: bookingHandler.BookMeeting,

		ListIntegrations:      integrationHandler.ListIntegrations,
		DisconnectProvider:    integrationHandler.Disconnect,
		StoreZoomCredentials:  integrationHandler.StoreZoomCredentials,
		StoreGmailCredentials: integrationHandler.StoreGmailCredentials,
		OAuthConnect:          integrationHandler.OAuthConnect,
		OAuthCallback:         integrationHandler.OAuthCallback,

		Health: handlers.HealthHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start dependency health monitoring.
	utils.StartHealthMonitor(60*time.Second, map[string]utils.ComponentChecker{
		"mongodb": func(ctx context.Context) error {
			return database.MongoClient.Ping(ctx, nil)
		},
		"redis-cache": func(ctx context.Context) error {
			return utils.GetCacheClient().Ping(ctx).Err()
		},
		"redis-oauth-state": func(ctx context.Context) error {
			return utils.GetStateCacheClient().Ping(ctx).Err()
		},
	})

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
