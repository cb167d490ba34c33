package models

import "time"

// Integration types.
const (
	IntegrationTypeMeeting = "meeting"
	IntegrationTypeEmail   = "email"
)

// Known providers.
const (
	ProviderZoom           = "zoom"
	ProviderGoogleCalendar = "google_calendar"
	ProviderCalendly       = "calendly"
	ProviderZohoBookings   = "zoho_bookings"
	ProviderGmail          = "gmail"
)

// MeetingProviders lists every meeting platform an organization can connect,
// in the order adapters are attempted.
var MeetingProviders = []string{
	ProviderZoom,
	ProviderGoogleCalendar,
	ProviderCalendly,
	ProviderZohoBookings,
}

// Integration is one organization's connection to an external platform.
// Config holds the encrypted credential blob; it never leaves the service.
type Integration struct {
	ID             string    `bson:"id" json:"id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	Name           string    `bson:"name" json:"name"`
	Type           string    `bson:"type" json:"type"`
	Provider       string    `bson:"provider" json:"provider"`
	Config         string    `bson:"config" json:"-"`
	IsActive       bool      `bson:"is_active" json:"is_active"`
	IsConnected    bool      `bson:"is_connected" json:"is_connected"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// IntegrationStatus is the secret-free view returned by the list endpoint.
type IntegrationStatus struct {
	Provider    string    `json:"provider"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	IsActive    bool      `json:"is_active"`
	IsConnected bool      `json:"is_connected"`
	CreatedAt   time.Time `json:"created_at"`
}

// Status strips the credential blob for external exposure.
func (i Integration) Status() IntegrationStatus {
	return IntegrationStatus{
		Provider:    i.Provider,
		Name:        i.Name,
		Type:        i.Type,
		IsActive:    i.IsActive,
		IsConnected: i.IsConnected,
		CreatedAt:   i.CreatedAt,
	}
}
