// File: services/platform/oauth.go
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"meetbridge/utils"
)

// refreshAccessToken performs a standard refresh_token grant against the given
// token endpoint and returns the new access token.
func refreshAccessToken(ctx context.Context, client *http.Client, tokenURL, refreshToken, clientID, clientSecret string) (string, error) {
	form := url.Values{}
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh failed with status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token refresh returned an empty access token")
	}
	return payload.AccessToken, nil
}

// saveRefreshedToken persists a refreshed token, logging instead of failing:
// the meeting was already created with the fresh token in hand.
func saveRefreshedToken(ctx context.Context, platform string, saver TokenSaver, token string) {
	if saver == nil {
		return
	}
	if err := saver(ctx, token); err != nil {
		utils.GetLogger().Warn("failed to persist refreshed access token",
			zap.String("platform", platform), zap.Error(err))
	}
}
