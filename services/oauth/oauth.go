// File: services/oauth/oauth.go
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"meetbridge/config"
	integrationRepo "meetbridge/database/repository/integration"
	"meetbridge/models"
	"meetbridge/utils"
)

const (
	statePrefix = "oauthstate:"
	stateTTL    = 10 * time.Minute
)

// Service runs the OAuth authorization-code flows for the providers that
// cannot be connected with static credentials.
type Service interface {
	Connect(ctx context.Context, orgID, provider string, clientID, clientSecret string, extra map[string]string) (string, error)
	Complete(ctx context.Context, orgID, provider, code, state string) (*models.IntegrationStatus, error)
}

// StateStore parks the pending connect between Connect and the provider
// callback. Entries expire after the TTL.
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
}

// redisStateStore is the production StateStore, one key per nonce with TTL.
type redisStateStore struct {
	client *redis.Client
}

func (s redisStateStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s redisStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (s redisStateStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// DefaultOAuthService stores pending connects in the state store and persists
// finished credential sets through the integration repository.
type DefaultOAuthService struct {
	Repo  integrationRepo.IntegrationRepository
	State StateStore
	HTTP  *http.Client

	// Endpoints is overridable for tests; nil means the provider table.
	Endpoints func(provider string, pending pendingConnect) (*providerEndpoints, error)
}

func NewDefaultOAuthService(repo integrationRepo.IntegrationRepository, stateClient *redis.Client) *DefaultOAuthService {
	return &DefaultOAuthService{
		Repo:  repo,
		State: redisStateStore{client: stateClient},
		HTTP:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *DefaultOAuthService) resolveEndpoints(provider string, pending pendingConnect) (*providerEndpoints, error) {
	if s.Endpoints != nil {
		return s.Endpoints(provider, pending)
	}
	return endpointsFor(provider, pending)
}

// pendingConnect is the state parked in Redis between connect and callback.
type pendingConnect struct {
	OrganizationID string            `json:"organization_id"`
	Provider       string            `json:"provider"`
	ClientID       string            `json:"client_id"`
	ClientSecret   string            `json:"client_secret"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Connect parks the client credentials under a fresh state nonce and returns
// the provider authorization URL the caller should redirect the admin to.
func (s *DefaultOAuthService) Connect(ctx context.Context, orgID, provider string, clientID, clientSecret string, extra map[string]string) (string, error) {
	if !OAuthProviders[provider] {
		return "", fmt.Errorf("provider %q does not use the OAuth connect flow", provider)
	}
	if clientID == "" || clientSecret == "" {
		return "", fmt.Errorf("client_id and client_secret are required")
	}

	pending := pendingConnect{
		OrganizationID: orgID,
		Provider:       provider,
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		Extra:          extra,
	}
	endpoints, err := s.resolveEndpoints(provider, pending)
	if err != nil {
		return "", err
	}

	state, err := newStateNonce()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(pending)
	if err != nil {
		return "", err
	}
	if err := s.State.Set(ctx, statePrefix+state, data, stateTTL); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", redirectURI())
	q.Set("state", state)
	if endpoints.scope != "" {
		q.Set("scope", endpoints.scope)
	}
	for key, vals := range endpoints.extra {
		for _, v := range vals {
			q.Set(key, v)
		}
	}

	utils.GetLogger().Info("oauth connect initiated",
		zap.String("provider", provider), zap.String("org", orgID))
	return endpoints.authURL + "?" + q.Encode(), nil
}

// Complete validates the state nonce, exchanges the authorization code for
// tokens and persists the encrypted credential set as a connected integration.
func (s *DefaultOAuthService) Complete(ctx context.Context, orgID, provider, code, state string) (*models.IntegrationStatus, error) {
	if code == "" || state == "" {
		return nil, fmt.Errorf("code and state are required")
	}

	raw, err := s.State.Get(ctx, statePrefix+state)
	if err != nil {
		return nil, fmt.Errorf("oauth state not found or expired")
	}
	// Single use: consume the nonce before any further validation.
	if err := s.State.Del(ctx, statePrefix+state); err != nil {
		utils.GetLogger().Warn("failed to delete oauth state nonce", zap.Error(err))
	}

	var pending pendingConnect
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, fmt.Errorf("failed to parse oauth state: %w", err)
	}
	if pending.OrganizationID != orgID || pending.Provider != provider {
		return nil, fmt.Errorf("oauth state does not match this organization and provider")
	}

	endpoints, err := s.resolveEndpoints(provider, pending)
	if err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := s.exchangeCode(ctx, endpoints.tokenURL, code, pending)
	if err != nil {
		return nil, err
	}

	creds := map[string]string{
		"client_id":     pending.ClientID,
		"client_secret": pending.ClientSecret,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	}
	for k, v := range pending.Extra {
		creds[k] = v
	}
	encrypted, err := utils.EncryptCredentials(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	saved, err := s.Repo.Upsert(ctx, models.Integration{
		OrganizationID: orgID,
		Name:           integrationName(provider),
		Type:           models.IntegrationTypeMeeting,
		Provider:       provider,
		Config:         encrypted,
		IsActive:       true,
		IsConnected:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save integration: %w", err)
	}

	utils.GetLogger().Info("oauth connect completed",
		zap.String("provider", provider), zap.String("org", orgID))
	status := saved.Status()
	return &status, nil
}

func (s *DefaultOAuthService) exchangeCode(ctx context.Context, tokenURL, code string, pending pendingConnect) (string, string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", pending.ClientID)
	form.Set("client_secret", pending.ClientSecret)
	form.Set("redirect_uri", redirectURI())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("token exchange returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", err
	}
	if payload.AccessToken == "" {
		return "", "", fmt.Errorf("token exchange returned an empty access token")
	}
	return payload.AccessToken, payload.RefreshToken, nil
}

func newStateNonce() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func redirectURI() string {
	return strings.TrimRight(config.AppConfig.FrontendURL, "/") + "/oauth/callback"
}

func integrationName(provider string) string {
	switch provider {
	case models.ProviderCalendly:
		return "Calendly"
	case models.ProviderGoogleCalendar:
		return "Google Calendar"
	case models.ProviderZohoBookings:
		return "Zoho Bookings"
	default:
		return provider
	}
}
