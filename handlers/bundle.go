package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle aggregates all route handlers for registration.
type HandlerBundle struct {
	// Booking endpoints.
	BookMeeting gin.HandlerFunc

	// Integration management endpoints.
	ListIntegrations      gin.HandlerFunc
	DisconnectProvider    gin.HandlerFunc
	StoreZoomCredentials  gin.HandlerFunc
	StoreGmailCredentials gin.HandlerFunc
	OAuthConnect          gin.HandlerFunc
	OAuthCallback         gin.HandlerFunc

	// Operational endpoints.
	Health gin.HandlerFunc
}
