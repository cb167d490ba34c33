package notification

import (
	"context"
	"errors"

	"meetbridge/models"
)

// ErrNotConfigured is returned when the organization has no connected email
// integration. The orchestrator reports it in the result; it is not fatal.
var ErrNotConfigured = errors.New("email integration not connected")

// Service sends the single booking-summary email for a completed BookingResult.
type Service interface {
	SendBookingSummary(ctx context.Context, orgID string, result *models.BookingResult) error
}
