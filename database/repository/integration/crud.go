// File: database/repository/integration/crud.go
package integrationRepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"meetbridge/models"
)

// Upsert creates or replaces the integration record for (organization, provider).
func (r *mongoIntegrationRepo) Upsert(ctx context.Context, integ models.Integration) (*models.Integration, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	if integ.ID == "" {
		integ.ID = uuid.New().String()
	}
	if integ.CreatedAt.IsZero() {
		integ.CreatedAt = now
	}
	integ.UpdatedAt = now

	filter := bson.M{"organization_id": integ.OrganizationID, "provider": integ.Provider}
	update := bson.M{
		"$set": bson.M{
			"name":         integ.Name,
			"type":         integ.Type,
			"config":       integ.Config,
			"is_active":    integ.IsActive,
			"is_connected": integ.IsConnected,
			"updated_at":   integ.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"id":              integ.ID,
			"organization_id": integ.OrganizationID,
			"provider":        integ.Provider,
			"created_at":      integ.CreatedAt,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var saved models.Integration
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetByProvider fetches one integration record for the organization.
func (r *mongoIntegrationRepo) GetByProvider(ctx context.Context, orgID, provider string) (*models.Integration, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"organization_id": orgID, "provider": provider}
	var integ models.Integration
	if err := r.coll.FindOne(ctx, filter).Decode(&integ); err != nil {
		return nil, err
	}
	return &integ, nil
}

// GetConnected returns every active, connected integration of the given type.
func (r *mongoIntegrationRepo) GetConnected(ctx context.Context, orgID, integrationType string) ([]models.Integration, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"organization_id": orgID,
		"type":            integrationType,
		"is_active":       true,
		"is_connected":    true,
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var integrations []models.Integration
	if err := cursor.All(ctx, &integrations); err != nil {
		return nil, err
	}
	return integrations, nil
}

// ListByOrganization returns all integration records for the organization.
func (r *mongoIntegrationRepo) ListByOrganization(ctx context.Context, orgID string) ([]models.Integration, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var integrations []models.Integration
	if err := cursor.All(ctx, &integrations); err != nil {
		return nil, err
	}
	return integrations, nil
}

// UpdateConfig replaces the encrypted credential blob, used after token refresh.
func (r *mongoIntegrationRepo) UpdateConfig(ctx context.Context, orgID, provider, encryptedConfig string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"organization_id": orgID, "provider": provider}
	update := bson.M{"$set": bson.M{"config": encryptedConfig, "updated_at": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Disconnect marks the integration as disconnected without wiping the record.
func (r *mongoIntegrationRepo) Disconnect(ctx context.Context, orgID, provider string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"organization_id": orgID, "provider": provider}
	update := bson.M{"$set": bson.M{"is_connected": false, "updated_at": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
