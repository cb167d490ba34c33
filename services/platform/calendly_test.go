package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetbridge/models"
)

func calendlyRequest(duration int) models.BookingRequest {
	return models.BookingRequest{
		CustomerName:    "John Doe",
		CustomerEmail:   "john@example.com",
		BookingDate:     "2030-06-15",
		BookingTime:     "14:00",
		DurationMinutes: duration,
		Timezone:        "UTC",
	}
}

func calendlyMux(t *testing.T, eventTypes []calendlyEventType) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"resource": map[string]any{"uri": "https://api.calendly.com/users/u-1"},
		})
	})
	mux.HandleFunc("/event_types", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://api.calendly.com/users/u-1", r.URL.Query().Get("user"))
		json.NewEncoder(w).Encode(map[string]any{"collection": eventTypes})
	})
	mux.HandleFunc("/scheduling_links", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1), body["max_event_count"])
		assert.Equal(t, "EventType", body["owner_type"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"resource": map[string]any{"booking_url": "https://calendly.com/s/single-use-xyz"},
		})
	})
	return mux
}

func newTestCalendlyAdapter(srv *httptest.Server, saver TokenSaver) *CalendlyAdapter {
	adapter := NewCalendlyAdapter(map[string]string{
		"access_token":  "at-1",
		"refresh_token": "rt-1",
		"client_id":     "cid",
		"client_secret": "secret",
	}, saver)
	adapter.BaseURL = srv.URL
	adapter.TokenURL = srv.URL + "/oauth/token"
	adapter.HTTP = srv.Client()
	return adapter
}

func TestCalendlyCreateMeetingMintsSingleUseLink(t *testing.T) {
	mux := calendlyMux(t, []calendlyEventType{
		{URI: "https://api.calendly.com/event_types/et-15", Name: "Quick Chat", Active: true, Duration: 15},
		{URI: "https://api.calendly.com/event_types/et-30", Name: "Consultation", Active: true, Duration: 30},
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	adapter := newTestCalendlyAdapter(srv, nil)
	artifact, err := adapter.CreateMeeting(context.Background(), calendlyRequest(30))
	require.NoError(t, err)

	assert.Equal(t, models.ProviderCalendly, artifact.Platform)
	assert.Equal(t, models.ArtifactConfirmationLink, artifact.Kind)
	assert.Equal(t, "https://calendly.com/s/single-use-xyz", artifact.URL)
	assert.Equal(t, models.ConfirmationPending, artifact.Confirmation)
}

func TestCalendlyEventTypeSelection(t *testing.T) {
	eventTypes := []calendlyEventType{
		{URI: "et-inactive", Active: false, Duration: 30},
		{URI: "et-60", Active: true, Duration: 60},
		{URI: "et-30", Active: true, Duration: 30},
	}

	t.Run("exact duration match wins", func(t *testing.T) {
		adapter := pickingAdapter(t, eventTypes)
		selected, err := adapter.pickEventType(context.Background(), "user-uri", 30)
		require.NoError(t, err)
		assert.Equal(t, "et-30", selected.URI)
	})

	t.Run("falls back to first active", func(t *testing.T) {
		adapter := pickingAdapter(t, eventTypes)
		selected, err := adapter.pickEventType(context.Background(), "user-uri", 45)
		require.NoError(t, err)
		assert.Equal(t, "et-60", selected.URI)
	})

	t.Run("no active event types is rejected", func(t *testing.T) {
		adapter := pickingAdapter(t, []calendlyEventType{{URI: "et-inactive", Active: false}})
		_, err := adapter.pickEventType(context.Background(), "user-uri", 30)
		require.Error(t, err)
		assert.Equal(t, ReasonUpstreamRejected, FailureReason(err))
	})
}

func pickingAdapter(t *testing.T, eventTypes []calendlyEventType) *CalendlyAdapter {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"collection": eventTypes})
	}))
	t.Cleanup(srv.Close)
	return newTestCalendlyAdapter(srv, nil)
}

func TestCalendlyRefreshesTokenOn401(t *testing.T) {
	var savedToken string
	var refreshCalls int

	mux := calendlyMux(t, []calendlyEventType{
		{URI: "et-30", Name: "Consultation", Active: true, Duration: 30},
	})
	// First users/me call rejects the stale token; the retry must carry the
	// refreshed one.
	var userCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			refreshCalls++
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			assert.Equal(t, "rt-1", r.PostForm.Get("refresh_token"))
			json.NewEncoder(w).Encode(map[string]any{"access_token": "at-2", "expires_in": 7200})
		case "/users/me":
			userCalls++
			if r.Header.Get("Authorization") != "Bearer at-2" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"resource": map[string]any{"uri": "https://api.calendly.com/users/u-1"},
			})
		default:
			mux.ServeHTTP(w, r)
		}
	}))
	defer srv.Close()

	adapter := newTestCalendlyAdapter(srv, func(ctx context.Context, token string) error {
		savedToken = token
		return nil
	})

	artifact, err := adapter.CreateMeeting(context.Background(), calendlyRequest(30))
	require.NoError(t, err)

	assert.Equal(t, models.ConfirmationPending, artifact.Confirmation)
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, 2, userCalls)
	assert.Equal(t, "at-2", savedToken)
	assert.Equal(t, "at-2", adapter.AccessToken)
}

func TestCalendlyRefreshFailureIsAuthExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	adapter := newTestCalendlyAdapter(srv, nil)

	_, err := adapter.CreateMeeting(context.Background(), calendlyRequest(30))
	require.Error(t, err)
	assert.Equal(t, ReasonAuthExpired, FailureReason(err))
}
