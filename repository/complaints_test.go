package repository

import (
	"context"
	"testing"
	"time"

	"civicecho-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func complaintDoc(id primitive.ObjectID, status string, upvoters ...string) bson.D {
	voters := bson.A{}
	for _, u := range upvoters {
		voters = append(voters, u)
	}
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "description", Value: "pothole on main street"},
		{Key: "latitude", Value: 28.7},
		{Key: "longitude", Value: 77.1},
		{Key: "category", Value: "road_damage"},
		{Key: "severity", Value: "high"},
		{Key: "status", Value: status},
		{Key: "upvotes", Value: len(upvoters)},
		{Key: "upvoters", Value: voters},
		{Key: "userId", Value: "owner"},
		{Key: "createdAt", Value: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestComplaintRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by id normalizes legacy status", func(mt *mtest.T) {
		repo := NewComplaintRepository(mt.DB, nil)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "civicecho.complaints", mtest.FirstBatch, complaintDoc(id, "VERIFIED")))

		c, err := repo.FindByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusInProgress, c.Status)
		assert.Equal(mt, models.CategoryRoad, c.Category)
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		repo := NewComplaintRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "civicecho.complaints", mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("list skips unknown status", func(mt *mtest.T) {
		repo := NewComplaintRepository(mt.DB, nil)
		good := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "civicecho.complaints", mtest.FirstBatch,
			complaintDoc(good, "reported"),
			complaintDoc(primitive.NewObjectID(), "ARCHIVED"),
		))

		list, err := repo.List(context.Background(), models.ComplaintFilter{})
		require.NoError(mt, err)
		require.Len(mt, list, 1)
		assert.Equal(mt, good, list[0].ID)
	})

	mt.Run("toggle upvote adds when absent", func(mt *mtest.T) {
		repo := NewComplaintRepository(mt.DB, nil)
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: complaintDoc(id, "reported", "u1")}),
		)

		c, err := repo.ToggleUpvote(context.Background(), id.Hex(), "u1")
		require.NoError(mt, err)
		assert.Equal(mt, 1, c.Upvotes)
		assert.Equal(mt, []string{"u1"}, c.Upvoters)
	})

	mt.Run("toggle upvote removes when present", func(mt *mtest.T) {
		repo := NewComplaintRepository(mt.DB, nil)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: complaintDoc(id, "reported")}))

		c, err := repo.ToggleUpvote(context.Background(), id.Hex(), "u1")
		require.NoError(mt, err)
		assert.Zero(mt, c.Upvotes)
		assert.Empty(mt, c.Upvoters)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewComplaintRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})
}
