package booking

import (
	"context"
	"time"

	"meetbridge/models"
	"meetbridge/services/notification"
	"meetbridge/services/platform"
	"meetbridge/utils"
)

// BookingService turns one BookingRequest into a BookingResult by fanning out
// to every connected platform adapter and sending a single summary email.
type BookingService interface {
	BookMeeting(ctx context.Context, orgID string, req models.BookingRequest) (*models.BookingResult, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Registry        platform.Registry
	NotificationSvc notification.Service
	Clock           utils.Clock

	// AdapterTimeout bounds each adapter call so one unreachable platform
	// cannot stall the others' results.
	AdapterTimeout time.Duration
	// DefaultTimezone applies when the request carries no zone.
	DefaultTimezone string
}
