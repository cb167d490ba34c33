// File: services/platform/zoom.go
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"meetbridge/models"
	"meetbridge/utils"
)

const (
	zoomAPIBaseURL = "https://api.zoom.us/v2"
	zoomTokenURL   = "https://zoom.us/oauth/token"
)

// ZoomAdapter creates scheduled Zoom meetings using Server-to-Server OAuth.
type ZoomAdapter struct {
	AccountID    string
	ClientID     string
	ClientSecret string

	// Overridable for tests.
	BaseURL  string
	TokenURL string
	HTTP     *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewZoomAdapter builds a Zoom adapter from stored S2S credentials.
func NewZoomAdapter(creds map[string]string) *ZoomAdapter {
	return &ZoomAdapter{
		AccountID:    creds["account_id"],
		ClientID:     creds["client_id"],
		ClientSecret: creds["client_secret"],
		BaseURL:      zoomAPIBaseURL,
		TokenURL:     zoomTokenURL,
		HTTP:         defaultHTTPClient(),
	}
}

func (a *ZoomAdapter) Name() string { return models.ProviderZoom }

// getAccessToken returns a valid S2S access token, fetching a new one when the
// cached token is absent or within the refresh window.
func (a *ZoomAdapter) getAccessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	utils.GetLogger().Debug("fetching new Zoom access token", zap.String("account", a.AccountID))

	q := url.Values{}
	q.Set("grant_type", "account_credentials")
	q.Set("account_id", a.AccountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.TokenURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(a.ClientID, a.ClientSecret)

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("zoom token endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	a.accessToken = payload.AccessToken
	// Token expires in an hour; renew 5 minutes early.
	a.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn-300) * time.Second)
	return a.accessToken, nil
}

type zoomMeeting struct {
	ID       json.Number `json:"id"`
	Topic    string      `json:"topic"`
	JoinURL  string      `json:"join_url"`
	Password string      `json:"password"`
}

// CreateMeeting schedules a Zoom meeting at the requested time and returns a
// confirmed artifact carrying the join URL and password.
func (a *ZoomAdapter) CreateMeeting(ctx context.Context, req models.BookingRequest) (*models.MeetingArtifact, error) {
	token, err := a.getAccessToken(ctx)
	if err != nil {
		return nil, NewAdapterError(a.Name(), ReasonAuthExpired, err)
	}

	start, err := req.StartsAt()
	if err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}

	agenda := req.Notes
	if agenda == "" {
		agenda = fmt.Sprintf("Scheduled meeting with %s", req.CustomerName)
	}

	body := map[string]any{
		"topic":      fmt.Sprintf("Meeting with %s", req.CustomerName),
		"type":       2, // scheduled meeting
		"start_time": start.Format("2006-01-02T15:04:05"),
		"duration":   req.DurationMinutes,
		"timezone":   req.Timezone,
		"agenda":     agenda,
		"settings": map[string]any{
			"host_video":        true,
			"participant_video": true,
			"join_before_host":  false,
			"audio":             "both",
			"auto_recording":    "none",
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/users/me/meetings", bytes.NewReader(payload))
	if err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTP.Do(httpReq)
	if err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected,
			fmt.Errorf("zoom meeting creation returned status %d", resp.StatusCode))
	}

	var meeting zoomMeeting
	if err := json.NewDecoder(resp.Body).Decode(&meeting); err != nil {
		return nil, NewAdapterError(a.Name(), ReasonUpstreamRejected, err)
	}

	utils.GetLogger().Info("zoom meeting created", zap.String("meetingID", meeting.ID.String()))

	return &models.MeetingArtifact{
		Platform:     a.Name(),
		Kind:         models.ArtifactInstantLink,
		URL:          meeting.JoinURL,
		Credential:   meeting.Password,
		MeetingID:    meeting.ID.String(),
		Confirmation: models.ConfirmationConfirmed,
	}, nil
}
