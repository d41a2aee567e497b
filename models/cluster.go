package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is a latitude/longitude pair in decimal degrees.
type GeoPoint struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Cluster groups complaints judged to describe the same incident.
// Category, severity and location are taken from the founding complaint.
type Cluster struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Complaints []string           `bson:"complaints" json:"complaints"`
	Category   ComplaintCategory  `bson:"category" json:"category"`
	Severity   Severity           `bson:"severity" json:"severity"`
	Location   GeoPoint           `bson:"location" json:"location"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
