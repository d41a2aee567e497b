package repository

import (
	"time"

	"civicecho-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// complaintFilter builds the AND query for List. Status matches every stored
// spelling that normalizes to the requested value.
func complaintFilter(f models.ComplaintFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = string(f.Category)
	}
	if f.Status != "" {
		filter["status"] = bson.M{"$in": models.StatusAliases(f.Status)}
	}
	if f.Severity != "" {
		filter["severity"] = string(f.Severity)
	}
	return filter
}

// clusteredSinceFilter selects complaints attached to a cluster and created at or after since.
func clusteredSinceFilter(since time.Time) bson.M {
	return bson.M{
		"clusterId": bson.M{"$nin": bson.A{nil, ""}},
		"createdAt": bson.M{"$gte": since},
	}
}

// patchUpdate turns a patch into a $set document, always stamping updatedAt.
func patchUpdate(p models.ComplaintPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.AssignedTo != nil {
		set["assignedTo"] = *p.AssignedTo
	}
	if p.AssignedResolver != nil {
		set["assignedResolver"] = *p.AssignedResolver
	}
	if p.UpdatedBy != nil {
		set["updatedBy"] = *p.UpdatedBy
	}
	if p.ResolutionNote != nil {
		set["resolutionNote"] = *p.ResolutionNote
	}
	if p.ResolvedAt != nil {
		set["resolvedAt"] = *p.ResolvedAt
	}
	return bson.M{"$set": set}
}

// objectID parses a hex id. Malformed ids are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.ErrNotFound
	}
	return oid, nil
}
