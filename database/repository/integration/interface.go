package integrationRepo

import (
	"context"

	"meetbridge/models"
)

// IntegrationRepository defines persistence for organization platform connections.
type IntegrationRepository interface {
	Upsert(ctx context.Context, integ models.Integration) (*models.Integration, error)
	GetByProvider(ctx context.Context, orgID, provider string) (*models.Integration, error)
	GetConnected(ctx context.Context, orgID, integrationType string) ([]models.Integration, error)
	ListByOrganization(ctx context.Context, orgID string) ([]models.Integration, error)
	UpdateConfig(ctx context.Context, orgID, provider, encryptedConfig string) error
	Disconnect(ctx context.Context, orgID, provider string) error
}
