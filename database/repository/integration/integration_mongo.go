package integrationRepo

import (
	"meetbridge/database"

	"go.mongodb.org/mongo-driver/mongo"
)

const collectionName = "integrations"

type mongoIntegrationRepo struct {
	coll *mongo.Collection
}

// NewMongoIntegrationRepo returns the production repository backed by the
// shared Mongo client. Indexes are ensured on construction.
func NewMongoIntegrationRepo() IntegrationRepository {
	repo := &mongoIntegrationRepo{
		coll: database.Collection(collectionName),
	}
	repo.ensureIndexes()
	return repo
}
