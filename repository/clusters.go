package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civicecho-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ClusterRepository stores complaint clusters.
type ClusterRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewClusterRepository returns a repository over the clusters collection of db.
func NewClusterRepository(db *mongo.Database) *ClusterRepository {
	return &ClusterRepository{coll: db.Collection(ClustersCollection), now: time.Now}
}

// CreateCluster inserts c and returns its hex id.
func (r *ClusterRepository) CreateCluster(ctx context.Context, c *models.Cluster) (string, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return "", fmt.Errorf("insert cluster: %w", err)
	}
	return c.ID.Hex(), nil
}

// AddMember appends complaintID to the cluster's member list once.
func (r *ClusterRepository) AddMember(ctx context.Context, clusterID, complaintID string) error {
	oid, err := objectID(clusterID)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$addToSet": bson.M{"complaints": complaintID},
		"$set":      bson.M{"updatedAt": r.now()},
	})
	if err != nil {
		return fmt.Errorf("add cluster member: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// FindByID returns the cluster with the given hex id.
func (r *ClusterRepository) FindByID(ctx context.Context, id string) (*models.Cluster, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var c models.Cluster
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find cluster %s: %w", id, err)
	}
	return &c, nil
}

// Count returns the number of clusters.
func (r *ClusterRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count clusters: %w", err)
	}
	return n, nil
}
