package repository

import (
	"testing"
	"time"

	"civicecho-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestComplaintFilter(t *testing.T) {
	assert.Empty(t, complaintFilter(models.ComplaintFilter{}))

	f := complaintFilter(models.ComplaintFilter{
		Category: models.CategoryRoad,
		Status:   models.StatusInProgress,
		Severity: models.SeverityHigh,
	})
	assert.Equal(t, "road_damage", f["category"])
	assert.Equal(t, "high", f["severity"])

	in, ok := f["status"].(bson.M)["$in"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"in_progress", "VERIFIED", "verified"}, in)
}

func TestPatchUpdate(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	status := models.StatusResolved
	note := "fixed"

	u := patchUpdate(models.ComplaintPatch{Status: &status, ResolutionNote: &note, ResolvedAt: &now}, now)
	set := u["$set"].(bson.M)
	assert.Equal(t, bson.M{
		"status":         "resolved",
		"resolutionNote": "fixed",
		"resolvedAt":     now,
		"updatedAt":      now,
	}, set)
}

func TestClusteredSinceFilter(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := clusteredSinceFilter(since)
	assert.Equal(t, bson.M{"$gte": since}, f["createdAt"])
	assert.Equal(t, bson.M{"$nin": bson.A{nil, ""}}, f["clusterId"])
}

func TestObjectIDRejectsMalformed(t *testing.T) {
	_, err := objectID("not-an-id")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
