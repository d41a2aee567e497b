package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComplaintCategory enum
type ComplaintCategory string

const (
	CategoryWater   ComplaintCategory = "water_leak"
	CategoryGarbage ComplaintCategory = "garbage_waste"
	CategoryRoad    ComplaintCategory = "road_damage"
	CategoryPower   ComplaintCategory = "power_outage"
	CategorySafety  ComplaintCategory = "safety_issue"
	CategoryOther   ComplaintCategory = "other"
)

// Valid reports whether c is one of the known categories.
func (c ComplaintCategory) Valid() bool {
	switch c {
	case CategoryWater, CategoryGarbage, CategoryRoad, CategoryPower, CategorySafety, CategoryOther:
		return true
	}
	return false
}

// Severity enum
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ComplaintType is the submission channel.
type ComplaintType string

const (
	TypeText  ComplaintType = "text"
	TypeVoice ComplaintType = "voice"
	TypePhoto ComplaintType = "photo"
)

// Sentiment is the document sentiment reported by the NLP collaborator.
type Sentiment struct {
	Score     float64 `bson:"score" json:"score"`
	Magnitude float64 `bson:"magnitude" json:"magnitude"`
}

// Complaint represents a civic issue reported by a citizen
type Complaint struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Description      string             `bson:"description" json:"description"`
	Latitude         float64            `bson:"latitude" json:"latitude"`
	Longitude        float64            `bson:"longitude" json:"longitude"`
	Address          *string            `bson:"address,omitempty" json:"address"`
	ComplaintType    ComplaintType      `bson:"complaintType" json:"complaintType"`
	AudioURL         *string            `bson:"audioUrl,omitempty" json:"audioUrl,omitempty"`
	ImageBase64      *string            `bson:"imageBase64,omitempty" json:"imageBase64,omitempty"`
	Category         ComplaintCategory  `bson:"category" json:"category"`
	Severity         Severity           `bson:"severity" json:"severity"`
	Sentiment        Sentiment          `bson:"sentiment" json:"sentiment"`
	Status           ComplaintStatus    `bson:"status" json:"status"`
	Upvotes          int                `bson:"upvotes" json:"upvotes"`
	Upvoters         []string           `bson:"upvoters" json:"upvoters"`
	ClusterID        *string            `bson:"clusterId" json:"clusterId"`
	AssignedTo       *string            `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	AssignedResolver *string            `bson:"assignedResolver,omitempty" json:"assignedResolver,omitempty"`
	UpdatedBy        *string            `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	ResolutionNote   *string            `bson:"resolutionNote,omitempty" json:"resolutionNote,omitempty"`
	ResolvedAt       *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	UserID           string             `bson:"userId" json:"userId"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsOwnedBy reports whether uid submitted the complaint.
func (c *Complaint) IsOwnedBy(uid string) bool {
	return uid != "" && c.UserID == uid
}

// HasUpvoted reports whether uid is in the upvoter set.
func (c *Complaint) HasUpvoted(uid string) bool {
	for _, u := range c.Upvoters {
		if u == uid {
			return true
		}
	}
	return false
}

// HasCluster reports whether the complaint was attached to a cluster.
func (c *Complaint) HasCluster() bool {
	return c.ClusterID != nil && *c.ClusterID != ""
}

// ComplaintFilter selects complaints for listing. Zero fields impose no constraint.
type ComplaintFilter struct {
	Category ComplaintCategory
	Status   ComplaintStatus
	Severity Severity
}

// ComplaintPatch holds the fields a mutation may set. Nil fields are left untouched.
type ComplaintPatch struct {
	Description      *string
	Status           *ComplaintStatus
	AssignedTo       *string
	AssignedResolver *string
	UpdatedBy        *string
	ResolutionNote   *string
	ResolvedAt       *time.Time
}

// Empty reports whether the patch sets nothing.
func (p ComplaintPatch) Empty() bool {
	return p.Description == nil && p.Status == nil && p.AssignedTo == nil &&
		p.AssignedResolver == nil && p.UpdatedBy == nil && p.ResolutionNote == nil &&
		p.ResolvedAt == nil
}

// Apply copies the patch onto c and stamps UpdatedAt.
func (c *Complaint) Apply(p ComplaintPatch, now time.Time) {
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.AssignedTo != nil {
		c.AssignedTo = p.AssignedTo
	}
	if p.AssignedResolver != nil {
		c.AssignedResolver = p.AssignedResolver
	}
	if p.UpdatedBy != nil {
		c.UpdatedBy = p.UpdatedBy
	}
	if p.ResolutionNote != nil {
		c.ResolutionNote = p.ResolutionNote
	}
	if p.ResolvedAt != nil {
		c.ResolvedAt = p.ResolvedAt
	}
	c.UpdatedAt = now
}

// ComplaintStatus enum
type ComplaintStatus string

const (
	StatusReported   ComplaintStatus = "reported"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	// StatusClosed only appears on legacy records.
	StatusClosed ComplaintStatus = "closed"
)

// legacyStatuses maps the older PENDING/VERIFIED/RESOLVED vocabulary onto the current one.
var legacyStatuses = map[string]ComplaintStatus{
	"PENDING":  StatusReported,
	"VERIFIED": StatusInProgress,
	"RESOLVED": StatusResolved,
	"verified": StatusInProgress,
	"CLOSED":   StatusClosed,
}

// ParseStatus normalizes s into a ComplaintStatus, accepting legacy values.
func ParseStatus(s string) (ComplaintStatus, bool) {
	s = strings.TrimSpace(s)
	switch st := ComplaintStatus(s); st {
	case StatusReported, StatusInProgress, StatusResolved, StatusClosed:
		return st, true
	}
	if st, ok := legacyStatuses[s]; ok {
		return st, true
	}
	return "", false
}

// StatusAliases returns s followed by every stored value that normalizes to it.
func StatusAliases(s ComplaintStatus) []string {
	out := []string{string(s)}
	for raw, st := range legacyStatuses {
		if st == s {
			out = append(out, raw)
		}
	}
	return out
}

func (s ComplaintStatus) rank() int {
	switch s {
	case StatusReported:
		return 0
	case StatusInProgress:
		return 1
	case StatusResolved:
		return 2
	case StatusClosed:
		return 3
	}
	return -1
}

// CanTransitionTo reports whether moving from s to next keeps the status monotonic.
// Moving back to reported is allowed only as a no-op.
func (s ComplaintStatus) CanTransitionTo(next ComplaintStatus) bool {
	if next == StatusClosed || next.rank() < 0 {
		return false
	}
	if next == StatusReported {
		return s == StatusReported
	}
	return next.rank() >= s.rank() || s == ""
}

// UnmarshalBSONValue normalizes legacy status vocabularies as documents are decoded.
func (s *ComplaintStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.Null || t == bsontype.Undefined {
		*s = StatusReported
		return nil
	}
	raw, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("status: expected string, got %s", t)
	}
	if raw == "" {
		*s = StatusReported
		return nil
	}
	parsed, ok := ParseStatus(raw)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	*s = parsed
	return nil
}
