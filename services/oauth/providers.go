package oauth

import (
	"fmt"
	"net/url"

	"meetbridge/models"
)

// providerEndpoints describes one OAuth provider's authorization and token
// endpoints. Zoho's are region-scoped and come from the connect request.
type providerEndpoints struct {
	authURL  string
	tokenURL string
	scope    string
	extra    url.Values // provider-specific authorize parameters
}

func endpointsFor(provider string, pending pendingConnect) (*providerEndpoints, error) {
	switch provider {
	case models.ProviderCalendly:
		return &providerEndpoints{
			authURL:  "https://auth.calendly.com/oauth/authorize",
			tokenURL: "https://auth.calendly.com/oauth/token",
		}, nil
	case models.ProviderGoogleCalendar:
		extra := url.Values{}
		extra.Set("access_type", "offline")
		extra.Set("prompt", "consent")
		return &providerEndpoints{
			authURL:  "https://accounts.google.com/o/oauth2/v2/auth",
			tokenURL: "https://oauth2.googleapis.com/token",
			scope:    "https://www.googleapis.com/auth/calendar.events https://www.googleapis.com/auth/calendar",
			extra:    extra,
		}, nil
	case models.ProviderZohoBookings:
		server := pending.Extra["accounts_server"]
		if server == "" {
			return nil, fmt.Errorf("accounts_server is required for zoho bookings")
		}
		extra := url.Values{}
		extra.Set("access_type", "offline")
		return &providerEndpoints{
			authURL:  fmt.Sprintf("https://%s/oauth/v2/auth", server),
			tokenURL: fmt.Sprintf("https://%s/oauth/v2/token", server),
			scope:    "zohobookings.data.CREATE",
			extra:    extra,
		}, nil
	default:
		return nil, fmt.Errorf("provider %q does not use the OAuth connect flow", provider)
	}
}

// OAuthProviders lists the providers connected through the authorization-code flow.
var OAuthProviders = map[string]bool{
	models.ProviderCalendly:       true,
	models.ProviderGoogleCalendar: true,
	models.ProviderZohoBookings:   true,
}
