// File: services/platform/calendly.go
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"meetbridge/models"
	"meetbridge/utils"
)

const (
	calendlyAPIBaseURL = "https://api.calendly.com"
	calendlyTokenURL   = "https://auth.calendly.com/oauth/token"
)

// CalendlyAdapter implements the link/confirm model: Calendly does not allow
// creating a finalized booking for a specific slot, so the adapter mints a
// single-use scheduling link bound to a matching event type. The artifact is
// pending-customer-action until the customer completes the link out of band.
type CalendlyAdapter struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string

	BaseURL  string
	TokenURL string
	HTTP     *http.Client

	SaveToken TokenSaver
}

// NewCalendlyAdapter builds the adapter from stored OAuth credentials.
func NewCalendlyAdapter(creds map[string]string, saver TokenSaver) *CalendlyAdapter {
	return &CalendlyAdapter{
		AccessToken:  creds["access_token"],
		RefreshToken: creds["refresh_token"],
		ClientID:     creds["client_id"],
		ClientSecret: creds["client_secret"],
		BaseURL:      calendlyAPIBaseURL,
		TokenURL:     calendlyTokenURL,
		HTTP:         defaultHTTPClient(),
		SaveToken:    saver,
	}
}

func (a *CalendlyAdapter) Name() string { return models.ProviderCalendly }

type calendlyEventType struct {
	URI           string `json:"uri"`
	Name          string `json:"name"`
	Active        bool   `json:"active"`
	Duration      int    `json:"duration"`
	SchedulingURL string `json:"scheduling_url"`
}

// CreateMeeting resolves the connected user, picks the event type closest to
// the requested duration and mints a max-single-use scheduling link.
func (a *CalendlyAdapter) CreateMeeting(ctx context.Context, req models.BookingRequest) (*models.MeetingArtifact, error) {
	userURI, err := a.currentUserURI(ctx)
	if err != nil {
		return nil, err
	}

	eventType, err := a.pickEventType(ctx, userURI, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	bookingURL, err := a.createSchedulingLink(ctx, eventType.URI)
	if err != nil {
		return nil, err
	}

	utils.GetLogger().Info("calendly single-use scheduling link created",
		zap.String("eventType", eventType.Name), zap.Int("duration", eventType.Duration))

	return &models.MeetingArtifact{
		Platform:     a.Name(),
		Kind:         models.ArtifactConfirmationLink,
		URL:          bookingURL,
		Confirmation: models.ConfirmationPending,
	}, nil
}

// doWithRefresh issues the request and, on a 401, refreshes the token and
// retries once with the request rebuilt by the caller-provided factory.
func (a *CalendlyAdapter) doWithRefresh(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	req, err := build()
	if err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamUnreachable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		newToken, refreshErr := refreshAccessToken(ctx, a.HTTP, a.TokenURL, a.RefreshToken, a.ClientID, a.ClientSecret)
		if refreshErr != nil {
			return nil, NewAdapterError(a.Name(), ReasonAuthExpired, refreshErr)
		}
		a.AccessToken = newToken
		saveRefreshedToken(ctx, a.Name(), a.SaveToken, newToken)

		req, err = build()
		if err != nil {
			return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
		}
		req.Header.Set("Authorization", "Bearer "+a.AccessToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err = a.HTTP.Do(req)
		if err != nil {
			return nil, NewAdapterError(a.Name(), ReasonUpstreamUnreachable, err)
		}
	}
	return resp, nil
}

func (a *CalendlyAdapter) currentUserURI(ctx context.Context) (string, error) {
	resp, err := a.doWithRefresh(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/users/me", nil)
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", NewAdapterError(a.Name(), ReasonUpstreamRejected,
			fmt.Errorf("calendly users/me returned status %d", resp.StatusCode))
	}

	var payload struct {
		Resource struct {
			URI string `json:"uri"`
		} `json:"resource"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}
	return payload.Resource.URI, nil
}

// pickEventType prefers an active event type whose duration matches the
// request exactly, falling back to the first active one.
func (a *CalendlyAdapter) pickEventType(ctx context.Context, userURI string, durationMinutes int) (*calendlyEventType, error) {
	q := url.Values{}
	q.Set("user", userURI)

	resp, err := a.doWithRefresh(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/event_types?"+q.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected,
			fmt.Errorf("calendly event_types returned status %d", resp.StatusCode))
	}

	var payload struct {
		Collection []calendlyEventType `json:"collection"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}

	var selected *calendlyEventType
	for i := range payload.Collection {
		et := &payload.Collection[i]
		if !et.Active {
			continue
		}
		if selected == nil {
			selected = et
		}
		if et.Duration == durationMinutes {
			selected = et
			break
		}
	}
	if selected == nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected,
			fmt.Errorf("no active calendly event types available"))
	}
	return selected, nil
}

func (a *CalendlyAdapter) createSchedulingLink(ctx context.Context, eventTypeURI string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"max_event_count": 1,
		"owner":           eventTypeURI,
		"owner_type":      "EventType",
	})
	if err != nil {
		return "", NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}

	resp, err := a.doWithRefresh(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/scheduling_links", bytes.NewReader(body))
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", NewAdapterError(a.Name(), ReasonUpstreamRejected,
			fmt.Errorf("calendly scheduling_links returned status %d", resp.StatusCode))
	}

	var payload struct {
		Resource struct {
			BookingURL string `json:"booking_url"`
		} `json:"resource"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}
	if payload.Resource.BookingURL == "" {
		return "", NewAdapterError(a.Name(), ReasonUpstreamRejected,
			fmt.Errorf("calendly returned an empty booking URL"))
	}
	return payload.Resource.BookingURL, nil
}
