package platform

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meetbridge/models"
)

// Failure reasons an adapter can surface. They are recovered locally by the
// orchestrator and reported per platform, never escalated.
const (
	ReasonNotConfigured       = "not-configured"
	ReasonAuthExpired         = "authentication-expired"
	ReasonUpstreamRejected    = "upstream-rejected"
	ReasonUpstreamUnreachable = "upstream-unreachable"
)

// Adapter creates one meeting on one external scheduling platform.
// Implementations own their credential lifecycle, including silent token
// refresh; they share no state with each other.
type Adapter interface {
	Name() string
	CreateMeeting(ctx context.Context, req models.BookingRequest) (*models.MeetingArtifact, error)
}

// AdapterError is the typed failure an adapter returns when meeting creation fails.
type AdapterError struct {
	Platform string
	Reason   string
	Err      error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Platform, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Platform, e.Reason)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// NewAdapterError builds a typed adapter failure.
func NewAdapterError(platform, reason string, err error) *AdapterError {
	return &AdapterError{Platform: platform, Reason: reason, Err: err}
}

// FailureReason extracts the typed reason from an adapter error, defaulting to
// upstream-unreachable for untyped failures (timeouts, transport errors).
func FailureReason(err error) string {
	if ae, ok := err.(*AdapterError); ok {
		return ae.Reason
	}
	return ReasonUpstreamUnreachable
}

// TokenSaver persists a refreshed access token back to the credential store.
// A nil saver is valid; refreshed tokens then live only for the request.
type TokenSaver func(ctx context.Context, accessToken string) error

// defaultHTTPClient bounds every upstream call; per-adapter deadlines come in
// through the request context.
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
