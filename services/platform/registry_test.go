package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetbridge/config"
	"meetbridge/models"
	"meetbridge/utils"
)

type stubIntegrationRepo struct {
	connected []models.Integration
	err       error

	updatedProvider string
	updatedConfig   string
}

func (r *stubIntegrationRepo) Upsert(ctx context.Context, integ models.Integration) (*models.Integration, error) {
	return &integ, nil
}

func (r *stubIntegrationRepo) GetByProvider(ctx context.Context, orgID, provider string) (*models.Integration, error) {
	return nil, nil
}

func (r *stubIntegrationRepo) GetConnected(ctx context.Context, orgID, integrationType string) ([]models.Integration, error) {
	return r.connected, r.err
}

func (r *stubIntegrationRepo) ListByOrganization(ctx context.Context, orgID string) ([]models.Integration, error) {
	return nil, nil
}

func (r *stubIntegrationRepo) UpdateConfig(ctx context.Context, orgID, provider, encryptedConfig string) error {
	r.updatedProvider = provider
	r.updatedConfig = encryptedConfig
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

func encryptedCreds(t *testing.T, creds map[string]string) string {
	t.Helper()
	encrypted, err := utils.EncryptCredentials(creds)
	require.NoError(t, err)
	return encrypted
}

func TestRegistryBuildsAdaptersPerProvider(t *testing.T) {
	withCredentialsKey(t, "test-secret-key")

	repo := &stubIntegrationRepo{connected: []models.Integration{
		{Provider: models.ProviderZoom, Config: encryptedCreds(t, map[string]string{"account_id": "a"})},
		{Provider: models.ProviderGoogleCalendar, Config: encryptedCreds(t, map[string]string{"access_token": "g"})},
		{Provider: models.ProviderCalendly, Config: encryptedCreds(t, map[string]string{"access_token": "c"})},
		{Provider: models.ProviderZohoBookings, Config: encryptedCreds(t, map[string]string{"api_domain": "bookings.zoho.com"})},
	}}

	registry := NewDefaultRegistry(repo)
	adapters, err := registry.Active(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, adapters, 4)

	names := make([]string, len(adapters))
	for i, a := range adapters {
		names[i] = a.Name()
	}
	assert.Equal(t, []string{
		models.ProviderZoom,
		models.ProviderGoogleCalendar,
		models.ProviderCalendly,
		models.ProviderZohoBookings,
	}, names)
}

func TestRegistrySkipsUndecryptableIntegration(t *testing.T) {
	withCredentialsKey(t, "test-secret-key")

	repo := &stubIntegrationRepo{connected: []models.Integration{
		{Provider: models.ProviderZoom, Config: "not-valid-ciphertext"},
		{Provider: models.ProviderCalendly, Config: encryptedCreds(t, map[string]string{"access_token": "c"})},
	}}

	adapters, err := NewDefaultRegistry(repo).Active(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, adapters, 1)
	assert.Equal(t, models.ProviderCalendly, adapters[0].Name())
}

func TestRegistrySkipsUnknownProvider(t *testing.T) {
	withCredentialsKey(t, "test-secret-key")

	repo := &stubIntegrationRepo{connected: []models.Integration{
		{Provider: "teams", Config: encryptedCreds(t, map[string]string{"access_token": "x"})},
	}}

	adapters, err := NewDefaultRegistry(repo).Active(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Empty(t, adapters)
}

func TestRegistryTokenSaverPersistsRefreshedToken(t *testing.T) {
	withCredentialsKey(t, "test-secret-key")

	repo := &stubIntegrationRepo{}
	registry := NewDefaultRegistry(repo)

	saver := registry.tokenSaver("org-1", models.ProviderCalendly, map[string]string{
		"access_token":  "stale",
		"refresh_token": "rt-1",
	})
	require.NoError(t, saver(context.Background(), "fresh"))

	assert.Equal(t, models.ProviderCalendly, repo.updatedProvider)
	creds, err := utils.DecryptCredentials(repo.updatedConfig)
	require.NoError(t, err)
	assert.Equal(t, "fresh", creds["access_token"])
	assert.Equal(t, "rt-1", creds["refresh_token"])
}
