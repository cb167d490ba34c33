// File: services/booking/validate.go
package booking

import (
	"time"

	"github.com/go-playground/validator/v10"

	"meetbridge/models"
)

var validate = validator.New()

// normalizeAndValidate applies defaults and rejects bad input before any side
// effect. It mutates the request copy held by the caller.
func (s *DefaultBookingService) normalizeAndValidate(req *models.BookingRequest) error {
	if req.CustomerName == "" {
		return NewValidationError("customer_name", "customer name is required")
	}
	if err := validate.Var(req.CustomerEmail, "required,email"); err != nil {
		return NewValidationError("customer_email", "a syntactically valid email address is required")
	}

	if req.DurationMinutes == 0 {
		req.DurationMinutes = 30
	}
	if req.DurationMinutes < 0 {
		return NewValidationError("duration_minutes", "duration must be a positive number of minutes")
	}

	if req.Timezone == "" {
		req.Timezone = s.DefaultTimezone
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return NewValidationError("timezone", "unknown IANA time zone")
	}

	if _, err := time.Parse("2006-01-02", req.BookingDate); err != nil {
		return NewValidationError("booking_date", "date must be a valid calendar date in YYYY-MM-DD format")
	}
	if _, err := time.Parse("15:04", req.BookingTime); err != nil {
		return NewValidationError("booking_time", "time must be in 24-hour HH:MM format")
	}

	start, err := req.StartsAt()
	if err != nil {
		return NewValidationError("booking_time", "could not resolve the requested start time")
	}
	if start.Before(s.Clock.Now()) {
		return NewValidationError("booking_time", "requested time is in the past")
	}
	return nil
}
