package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civicecho-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository stores user profiles keyed by identity-provider uid.
type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewUserRepository returns a repository over the users collection of db.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection), now: time.Now}
}

// FindByID returns the profile for uid.
func (r *UserRepository) FindByID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", uid, err)
	}
	return &u, nil
}

// Create inserts a new profile.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UpdateEmail refreshes the stored email and returns the profile.
func (r *UserRepository) UpdateEmail(ctx context.Context, uid, email string) (*models.User, error) {
	return r.findOneAndUpdate(ctx, uid, bson.M{
		"$set": bson.M{"email": email, "updatedAt": r.now()},
	})
}

// AddPoints increments the user's points and returns the updated profile.
func (r *UserRepository) AddPoints(ctx context.Context, uid string, amount int) (*models.User, error) {
	return r.findOneAndUpdate(ctx, uid, bson.M{
		"$inc": bson.M{"points": amount},
		"$set": bson.M{"updatedAt": r.now()},
	})
}

// AddBadges adds badges the user does not hold yet.
func (r *UserRepository) AddBadges(ctx context.Context, uid string, badges []string) error {
	if len(badges) == 0 {
		return nil
	}
	_, err := r.findOneAndUpdate(ctx, uid, bson.M{
		"$addToSet": bson.M{"badges": bson.M{"$each": badges}},
		"$set":      bson.M{"updatedAt": r.now()},
	})
	return err
}

// TopByPoints returns up to limit users with role, highest points first.
func (r *UserRepository) TopByPoints(ctx context.Context, role models.UserRole, limit int) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"role": string(role)}, opts)
	if err != nil {
		return nil, fmt.Errorf("find leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0, limit)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return users, nil
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, uid string, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u models.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": uid}, update, opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("update user %s: %w", uid, err)
	}
	return &u, nil
}
