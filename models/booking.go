package models

import "time"

// Confirmation states of a MeetingArtifact.
const (
	// ConfirmationConfirmed means the platform created a finalized meeting whose
	// primary URL is immediately usable.
	ConfirmationConfirmed = "confirmed"
	// ConfirmationPending means the platform produced an offer (e.g. a single-use
	// scheduling link) that the customer must complete out of band.
	ConfirmationPending = "pending-customer-action"
	// ConfirmationFailed means the adapter could not create anything; FailureReason
	// carries the cause.
	ConfirmationFailed = "failed"
)

// Artifact kinds.
const (
	ArtifactInstantLink      = "instant-joinable-link"
	ArtifactConfirmationLink = "confirmation-required-link"
)

// BookingRequest is one incoming booking intent. It is immutable after creation.
type BookingRequest struct {
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerEmail   string `json:"customer_email" binding:"required"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	BookingDate     string `json:"booking_date" binding:"required"`    // "YYYY-MM-DD"
	BookingTime     string `json:"booking_time" binding:"required"`    // "HH:MM", 24-hour
	DurationMinutes int    `json:"duration_minutes"`                   // defaults to 30
	Notes           string `json:"notes,omitempty"`
	Timezone        string `json:"timezone,omitempty"`                 // IANA name, defaults to config
}

// StartsAt combines date, time and zone into the meeting start instant.
// The zone must already be resolved (no empty Timezone).
func (r BookingRequest) StartsAt() (time.Time, error) {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation("2006-01-02 15:04", r.BookingDate+" "+r.BookingTime, loc)
}

// EndsAt returns the meeting end instant.
func (r BookingRequest) EndsAt() (time.Time, error) {
	start, err := r.StartsAt()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(r.DurationMinutes) * time.Minute), nil
}

// MeetingArtifact is the outcome of one adapter's attempt to satisfy a BookingRequest.
type MeetingArtifact struct {
	Platform      string `json:"platform"`
	Kind          string `json:"kind,omitempty"`
	URL           string `json:"url,omitempty"`
	Credential    string `json:"credential,omitempty"` // e.g. a Zoom join password
	MeetingID     string `json:"meeting_id,omitempty"`
	ExtraURL      string `json:"extra_url,omitempty"` // e.g. Google Meet link next to the event link
	Confirmation  string `json:"confirmation"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// Succeeded reports whether the adapter produced a usable artifact.
func (a MeetingArtifact) Succeeded() bool {
	return a.Confirmation == ConfirmationConfirmed || a.Confirmation == ConfirmationPending
}

// BookingResult aggregates the attempt outcomes for one BookingRequest.
// Exactly one artifact is present per attempted adapter.
type BookingResult struct {
	Request           BookingRequest    `json:"meeting_details"`
	Artifacts         []MeetingArtifact `json:"artifacts"`
	PlatformsUsed     []string          `json:"integrations_used"`
	EmailSent         bool              `json:"email_sent"`
	NotificationError string            `json:"notification_error,omitempty"`
	Message           string            `json:"message"`
}

// SuccessfulArtifacts returns the artifacts that produced a usable link.
func (r *BookingResult) SuccessfulArtifacts() []MeetingArtifact {
	var out []MeetingArtifact
	for _, a := range r.Artifacts {
		if a.Succeeded() {
			out = append(out, a)
		}
	}
	return out
}
