// File: services/platform/registry.go
package platform

import (
	"context"

	"go.uber.org/zap"

	integrationRepo "meetbridge/database/repository/integration"
	"meetbridge/models"
	"meetbridge/utils"
)

// Registry resolves the set of adapters that are currently connected for an
// organization. The orchestrator depends on this interface only, so tests can
// inject a fixed adapter set.
type Registry interface {
	Active(ctx context.Context, orgID string) ([]Adapter, error)
}

// DefaultRegistry builds adapters from the persisted integration records.
type DefaultRegistry struct {
	Repo integrationRepo.IntegrationRepository
}

func NewDefaultRegistry(repo integrationRepo.IntegrationRepository) *DefaultRegistry {
	return &DefaultRegistry{Repo: repo}
}

// Active loads every connected, active meeting integration, decrypts its
// credentials and constructs the matching adapter. A record that cannot be
// decrypted is skipped with a warning rather than failing the whole set.
func (r *DefaultRegistry) Active(ctx context.Context, orgID string) ([]Adapter, error) {
	integrations, err := r.Repo.GetConnected(ctx, orgID, models.IntegrationTypeMeeting)
	if err != nil {
		return nil, err
	}

	logger := utils.GetLogger()
	adapters := make([]Adapter, 0, len(integrations))
	for _, integ := range integrations {
		creds, err := utils.DecryptCredentials(integ.Config)
		if err != nil {
			logger.Warn("skipping integration with undecryptable credentials",
				zap.String("provider", integ.Provider), zap.String("org", orgID), zap.Error(err))
			continue
		}

		saver := r.tokenSaver(orgID, integ.Provider, creds)
		switch integ.Provider {
		case models.ProviderZoom:
			adapters = append(adapters, NewZoomAdapter(creds))
		case models.ProviderGoogleCalendar:
			adapters = append(adapters, NewGoogleCalendarAdapter(creds, saver))
		case models.ProviderCalendly:
			adapters = append(adapters, NewCalendlyAdapter(creds, saver))
		case models.ProviderZohoBookings:
			adapters = append(adapters, NewZohoBookingsAdapter(creds, saver))
		default:
			logger.Warn("unknown meeting provider connected", zap.String("provider", integ.Provider))
		}
	}
	return adapters, nil
}

// tokenSaver re-encrypts the credential set with the refreshed access token
// and writes it back, so the next request starts with a valid token.
func (r *DefaultRegistry) tokenSaver(orgID, provider string, creds map[string]string) TokenSaver {
	return func(ctx context.Context, accessToken string) error {
		updated := make(map[string]string, len(creds))
		for k, v := range creds {
			updated[k] = v
		}
		updated["access_token"] = accessToken

		encrypted, err := utils.EncryptCredentials(updated)
		if err != nil {
			return err
		}
		return r.Repo.UpdateConfig(ctx, orgID, provider, encrypted)
	}
}
