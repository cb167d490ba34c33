package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetbridge/config"
	"meetbridge/models"
	"meetbridge/utils"
)

type memStateStore struct {
	data map[string][]byte
}

func newMemStateStore() *memStateStore {
	return &memStateStore{data: map[string][]byte{}}
}

func (m *memStateStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := m.data[key]
	if !ok {
		return nil, errors.New("key not found")
	}
	return value, nil
}

func (m *memStateStore) Del(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type stubIntegrationRepo struct {
	upserted *models.Integration
}

func (r *stubIntegrationRepo) Upsert(ctx context.Context, integ models.Integration) (*models.Integration, error) {
	r.upserted = &integ
	return &integ, nil
}

func (r *stubIntegrationRepo) GetByProvider(ctx context.Context, orgID, provider string) (*models.Integration, error) {
	return nil, nil
}

func (r *stubIntegrationRepo) GetConnected(ctx context.Context, orgID, integrationType string) ([]models.Integration, error) {
	return nil, nil
}

func (r *stubIntegrationRepo) ListByOrganization(ctx context.Context, orgID string) ([]models.Integration, error) {
	return nil, nil
}

func (r *stubIntegrationRepo) UpdateConfig(ctx context.Context, orgID, provider, encryptedConfig string) error {
	return nil
}

func (r *stubIntegrationRepo) Disconnect(ctx context.Context, orgID, provider string) error {
	return nil
}

func withCredentialsKey(t *testing.T, key string) {
	t.Helper()
	prev := config.AppConfig.CredentialsKey
	config.AppConfig.CredentialsKey = key
	t.Cleanup(func() { config.AppConfig.CredentialsKey = prev })
}

func newTestService(store StateStore) (*DefaultOAuthService, *stubIntegrationRepo) {
	repo := &stubIntegrationRepo{}
	return &DefaultOAuthService{
		Repo:  repo,
		State: store,
		HTTP:  &http.Client{Timeout: time.Second},
	}, repo
}

func seedState(t *testing.T, store *memStateStore, state string, pending pendingConnect) {
	t.Helper()
	data, err := json.Marshal(pending)
	require.NoError(t, err)
	store.data[statePrefix+state] = data
}

func TestConnectStoresNonceAndBuildsAuthURL(t *testing.T) {
	prev := config.AppConfig.FrontendURL
	config.AppConfig.FrontendURL = "https://app.example.com"
	t.Cleanup(func() { config.AppConfig.FrontendURL = prev })

	store := newMemStateStore()
	svc, _ := newTestService(store)

	authURL, err := svc.Connect(context.Background(), "org-1", models.ProviderCalendly, "cid", "secret", nil)
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "auth.calendly.com", parsed.Host)

	q := parsed.Query()
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "https://app.example.com/oauth/callback", q.Get("redirect_uri"))

	state := q.Get("state")
	require.NotEmpty(t, state)
	raw, err := store.Get(context.Background(), statePrefix+state)
	require.NoError(t, err)

	var pending pendingConnect
	require.NoError(t, json.Unmarshal(raw, &pending))
	assert.Equal(t, "org-1", pending.OrganizationID)
	assert.Equal(t, "secret", pending.ClientSecret)
}

func TestConnectRejectsNonOAuthProvider(t *testing.T) {
	svc, _ := newTestService(newMemStateStore())
	_, err := svc.Connect(context.Background(), "org-1", models.ProviderZoom, "cid", "secret", nil)
	assert.Error(t, err)
}

func TestConnectRequiresClientCredentials(t *testing.T) {
	svc, _ := newTestService(newMemStateStore())
	_, err := svc.Connect(context.Background(), "org-1", models.ProviderCalendly, "cid", "", nil)
	assert.Error(t, err)
}

func TestCompleteRejectsUnknownState(t *testing.T) {
	svc, _ := newTestService(newMemStateStore())
	_, err := svc.Complete(context.Background(), "org-1", models.ProviderCalendly, "code-1", "no-such-state")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found or expired")
}

func TestCompleteRejectsMismatchedOrgAndConsumesNonce(t *testing.T) {
	store := newMemStateStore()
	svc, _ := newTestService(store)
	seedState(t, store, "nonce-1", pendingConnect{
		OrganizationID: "org-1",
		Provider:       models.ProviderCalendly,
		ClientID:       "cid",
		ClientSecret:   "secret",
	})

	_, err := svc.Complete(context.Background(), "org-2", models.ProviderCalendly, "code-1", "nonce-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")

	// The nonce is single use even when validation fails.
	_, err = store.Get(context.Background(), statePrefix+"nonce-1")
	assert.Error(t, err)
}

func TestCompleteRejectsMismatchedProvider(t *testing.T) {
	store := newMemStateStore()
	svc, _ := newTestService(store)
	seedState(t, store, "nonce-1", pendingConnect{
		OrganizationID: "org-1",
		Provider:       models.ProviderCalendly,
	})

	_, err := svc.Complete(context.Background(), "org-1", models.ProviderGoogleCalendar, "code-1", "nonce-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestCompleteExchangesCodeAndPersistsIntegration(t *testing.T) {
	withCredentialsKey(t, "test-secret-key")

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "code-1", r.PostForm.Get("code"))
		assert.Equal(t, "cid", r.PostForm.Get("client_id"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
		})
	}))
	defer tokenSrv.Close()

	store := newMemStateStore()
	svc, repo := newTestService(store)
	svc.Endpoints = func(provider string, pending pendingConnect) (*providerEndpoints, error) {
		return &providerEndpoints{tokenURL: tokenSrv.URL}, nil
	}
	seedState(t, store, "nonce-1", pendingConnect{
		OrganizationID: "org-1",
		Provider:       models.ProviderZohoBookings,
		ClientID:       "cid",
		ClientSecret:   "secret",
		Extra:          map[string]string{"accounts_server": "accounts.zoho.in", "service_id": "svc-1"},
	})

	status, err := svc.Complete(context.Background(), "org-1", models.ProviderZohoBookings, "code-1", "nonce-1")
	require.NoError(t, err)

	assert.True(t, status.IsConnected)
	assert.Equal(t, models.ProviderZohoBookings, status.Provider)

	require.NotNil(t, repo.upserted)
	assert.Equal(t, "org-1", repo.upserted.OrganizationID)
	assert.Equal(t, models.IntegrationTypeMeeting, repo.upserted.Type)

	creds, err := utils.DecryptCredentials(repo.upserted.Config)
	require.NoError(t, err)
	assert.Equal(t, "at-1", creds["access_token"])
	assert.Equal(t, "rt-1", creds["refresh_token"])
	assert.Equal(t, "svc-1", creds["service_id"])
}
