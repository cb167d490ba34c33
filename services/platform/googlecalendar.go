// File: services/platform/googlecalendar.go
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"meetbridge/models"
	"meetbridge/utils"
)

const (
	googleCalendarBaseURL = "https://www.googleapis.com/calendar/v3"
	googleTokenURL        = "https://oauth2.googleapis.com/token"
)

// GoogleCalendarAdapter creates a calendar event on the connected account's
// primary calendar with an attached Google Meet link.
type GoogleCalendarAdapter struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string

	BaseURL  string
	TokenURL string
	HTTP     *http.Client

	SaveToken TokenSaver
}

// NewGoogleCalendarAdapter builds the adapter from stored OAuth credentials.
func NewGoogleCalendarAdapter(creds map[string]string, saver TokenSaver) *GoogleCalendarAdapter {
	return &GoogleCalendarAdapter{
		AccessToken:  creds["access_token"],
		RefreshToken: creds["refresh_token"],
		ClientID:     creds["client_id"],
		ClientSecret: creds["client_secret"],
		BaseURL:      googleCalendarBaseURL,
		TokenURL:     googleTokenURL,
		HTTP:         defaultHTTPClient(),
		SaveToken:    saver,
	}
}

func (a *GoogleCalendarAdapter) Name() string { return models.ProviderGoogleCalendar }

type googleEvent struct {
	ID          string `json:"id"`
	HTMLLink    string `json:"htmlLink"`
	HangoutLink string `json:"hangoutLink"`
}

// CreateMeeting inserts the event and returns a confirmed artifact with the
// event link, plus the Meet link when the conference request was honored.
func (a *GoogleCalendarAdapter) CreateMeeting(ctx context.Context, req models.BookingRequest) (*models.MeetingArtifact, error) {
	start, err := req.StartsAt()
	if err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}
	end, err := req.EndsAt()
	if err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}

	description := req.Notes
	if description == "" {
		description = fmt.Sprintf("Scheduled meeting with %s", req.CustomerName)
	}

	event := map[string]any{
		"summary":     fmt.Sprintf("Meeting with %s", req.CustomerName),
		"description": description,
		"start": map[string]string{
			"dateTime": start.Format("2006-01-02T15:04:05"),
			"timeZone": req.Timezone,
		},
		"end": map[string]string{
			"dateTime": end.Format("2006-01-02T15:04:05"),
			"timeZone": req.Timezone,
		},
		"attendees": []map[string]string{{"email": req.CustomerEmail}},
		"conferenceData": map[string]any{
			"createRequest": map[string]any{
				"requestId":             uuid.New().String(),
				"conferenceSolutionKey": map[string]string{"type": "hangoutsMeet"},
			},
		},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}

	createURL := a.BaseURL + "/calendars/primary/events?conferenceDataVersion=1"

	resp, err := a.post(ctx, createURL, payload)
	if err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamUnreachable, err)
	}

	// Expired token: refresh silently and retry once.
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		newToken, refreshErr := refreshAccessToken(ctx, a.HTTP, a.TokenURL, a.RefreshToken, a.ClientID, a.ClientSecret)
		if refreshErr != nil {
			return nil, NewAdapterError(a.Name(), ReasonAuthExpired, refreshErr)
		}
		a.AccessToken = newToken
		saveRefreshedToken(ctx, a.Name(), a.SaveToken, newToken)

		resp, err = a.post(ctx, createURL, payload)
		if err != nil {
			return nil, NewAdapterError(a.Name(), ReasonUpstreamUnreachable, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected,
			fmt.Errorf("google calendar event creation returned status %d", resp.StatusCode))
	}

	var created googleEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}

	utils.GetLogger().Info("google calendar event created", zap.String("eventID", created.ID))

	return &models.MeetingArtifact{
		Platform:     a.Name(),
		Kind:         models.ArtifactInstantLink,
		URL:          created.HTMLLink,
		ExtraURL:     created.HangoutLink,
		MeetingID:    created.ID,
		Confirmation: models.ConfirmationConfirmed,
	}, nil
}

func (a *GoogleCalendarAdapter) post(ctx context.Context, url string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	return a.HTTP.Do(req)
}
