package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"meetbridge/handlers"
	"meetbridge/middleware"
)

// RegisterIntegrationRoutes registers the booking and integration-management endpoints.
func RegisterIntegrationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/integrations")
	{
		// All integration endpoints require service authentication.
		api.Use(middleware.JWTAuthMiddleware())

		api.POST("/book-meeting", hb.BookMeeting)

		api.GET("", hb.ListIntegrations)
		api.DELETE("/:provider", hb.DisconnectProvider)

		// Static-credential providers.
		api.POST("/zoom", hb.StoreZoomCredentials)
		api.POST("/gmail", hb.StoreGmailCredentials)

		// OAuth authorization-code providers.
		api.POST("/:provider/connect", hb.OAuthConnect)
		api.POST("/:provider/callback", hb.OAuthCallback)
	}
}

// RegisterRoutes applies CORS and wires every endpoint group.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", hb.Health)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	RegisterIntegrationRoutes(r, hb)
}
