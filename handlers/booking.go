package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meetbridge/middleware"
	"meetbridge/models"
	"meetbridge/services/booking"
	"meetbridge/utils"
)

// BookingHandler exposes the unified booking endpoint.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// BookMeeting creates a meeting on every connected platform for the
// organization and returns the aggregated result, including partial failures.
func (h *BookingHandler) BookMeeting(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	orgID := middleware.OrgID(c)
	if orgID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "missing organization", "")
		return
	}

	result, err := h.Service.BookMeeting(c.Request.Context(), orgID, req)
	if err != nil {
		var vErr *booking.ValidationError
		if errors.As(err, &vErr) {
			utils.JSONError(c, http.StatusBadRequest, "invalid booking request", vErr.Error())
			return
		}
		h.Logger.Error("book meeting failed", zap.String("org", orgID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to book meeting", "Please try again later")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": len(result.PlatformsUsed) > 0,
		"result":  result,
	})
}
