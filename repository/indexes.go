package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names.
const (
	ComplaintsCollection = "complaints"
	ClustersCollection   = "clusters"
	UsersCollection      = "users"
)

var indexes = map[string][]mongo.IndexModel{
	ComplaintsCollection: {
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "clusterId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}, {Key: "severity", Value: 1}}},
	},
	UsersCollection: {
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "points", Value: -1}}},
	},
}

// EnsureIndexes creates the secondary indexes the queries in this package rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}
