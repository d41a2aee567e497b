// Package repository persists complaints, clusters and users in MongoDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civicecho-be/logger"
	"civicecho-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ComplaintRepository stores complaints.
type ComplaintRepository struct {
	coll *mongo.Collection
	log  logger.Logger
	now  func() time.Time
}

// NewComplaintRepository returns a repository over the complaints collection of db.
func NewComplaintRepository(db *mongo.Database, log logger.Logger) *ComplaintRepository {
	if log == nil {
		log = logger.NewNop()
	}
	return &ComplaintRepository{
		coll: db.Collection(ComplaintsCollection),
		log:  log,
		now:  time.Now,
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

// Insert stores c. c.ID must already be set.
func (r *ComplaintRepository) Insert(ctx context.Context, c *models.Complaint) error {
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

// FindByID returns the complaint with the given hex id.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var c models.Complaint
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find complaint %s: %w", id, err)
	}
	return &c, nil
}

// List returns complaints matching f, newest first.
func (r *ComplaintRepository) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	return r.find(ctx, complaintFilter(f), newestFirst)
}

// ListByOwner returns the complaints submitted by uid, newest first.
func (r *ComplaintRepository) ListByOwner(ctx context.Context, uid string) ([]models.Complaint, error) {
	return r.find(ctx, bson.M{"userId": uid}, newestFirst)
}

// ClusteredSince returns clustered complaints created at or after since, oldest first.
func (r *ComplaintRepository) ClusteredSince(ctx context.Context, since time.Time) ([]models.Complaint, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, clusteredSinceFilter(since), opts)
}

// Update applies p and returns the updated document.
func (r *ComplaintRepository) Update(ctx context.Context, id string, p models.ComplaintPatch) (*models.Complaint, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, patchUpdate(p, r.now()))
}

// Delete removes the complaint.
func (r *ComplaintRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete complaint %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ToggleUpvote removes uid from the upvoter set if present, otherwise adds it.
// Each branch is a single conditional update, so the counter always moves with
// the set.
func (r *ComplaintRepository) ToggleUpvote(ctx context.Context, id, uid string) (*models.Complaint, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	now := r.now()

	c, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": oid, "upvoters": uid},
		bson.M{
			"$pull": bson.M{"upvoters": uid},
			"$inc":  bson.M{"upvotes": -1},
			"$set":  bson.M{"updatedAt": now},
		})
	if !errors.Is(err, models.ErrNotFound) {
		return c, err
	}

	c, err = r.findOneAndUpdate(ctx,
		bson.M{"_id": oid, "upvoters": bson.M{"$ne": uid}},
		bson.M{
			"$addToSet": bson.M{"upvoters": uid},
			"$inc":      bson.M{"upvotes": 1},
			"$set":      bson.M{"updatedAt": now},
		})
	if errors.Is(err, models.ErrNotFound) {
		// either the complaint is gone or a concurrent toggle by uid won the race
		return r.FindByID(ctx, id)
	}
	return c, err
}

func (r *ComplaintRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Complaint, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c models.Complaint
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("update complaint: %w", err)
	}
	return &c, nil
}

// find decodes documents one by one so a single record with an unrecognized
// status is skipped instead of failing the whole listing.
func (r *ComplaintRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Complaint, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find complaints: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]models.Complaint, 0)
	for cursor.Next(ctx) {
		var c models.Complaint
		if err := cursor.Decode(&c); err != nil {
			r.log.Warn("Skipping undecodable complaint",
				logger.String("id", cursor.Current.Lookup("_id").String()),
				logger.Error(err),
			)
			continue
		}
		out = append(out, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate complaints: %w", err)
	}
	return out, nil
}
