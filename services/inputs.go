package services

import (
	"strings"

	"civicecho-be/models"
)

// MaxDescriptionLen caps complaint text, counted in runes.
const MaxDescriptionLen = 5000

// MaxImageBase64Len caps an attached photo at 5 MiB of base64 text.
const MaxImageBase64Len = 5 * 1024 * 1024

// CreateComplaintInput is a citizen submission.
type CreateComplaintInput struct {
	Description   string               `json:"description" validate:"required_unless=ComplaintType voice,max=5000"`
	Latitude      *float64             `json:"latitude" validate:"required,latitude"`
	Longitude     *float64             `json:"longitude" validate:"required,longitude"`
	ComplaintType models.ComplaintType `json:"complaintType" validate:"omitempty,oneof=text voice photo"`
	AudioURL      string               `json:"audioUrl" validate:"omitempty,url"`
	ImageBase64   string               `json:"imageBase64" validate:"max=5242880"`
	UserID        string               `json:"userId" validate:"required"`
	// Audio is the raw recording for voice complaints; it is never stored.
	Audio        []byte `json:"-"`
	LanguageCode string `json:"languageCode" validate:"omitempty,bcp47_language_tag"`
}

func (in *CreateComplaintInput) normalize() {
	in.Description = strings.TrimSpace(in.Description)
	in.UserID = strings.TrimSpace(in.UserID)
	if in.ComplaintType == "" {
		in.ComplaintType = models.TypeText
	}
}

// ListFilter holds the raw query filters for List. Empty fields impose no constraint.
type ListFilter struct {
	Category string
	Status   string
	Severity string
}

// parse validates each present field against its enum.
func (f ListFilter) parse() (models.ComplaintFilter, error) {
	var out models.ComplaintFilter
	var bad []string

	if f.Category != "" {
		out.Category = models.ComplaintCategory(strings.ToLower(strings.TrimSpace(f.Category)))
		if !out.Category.Valid() {
			bad = append(bad, "category")
		}
	}
	if f.Status != "" {
		st, ok := models.ParseStatus(f.Status)
		if !ok {
			bad = append(bad, "status")
		}
		out.Status = st
	}
	if f.Severity != "" {
		out.Severity = models.Severity(strings.ToLower(strings.TrimSpace(f.Severity)))
		if !out.Severity.Valid() {
			bad = append(bad, "severity")
		}
	}

	if len(bad) > 0 {
		return models.ComplaintFilter{}, &ValidationError{Message: "invalid filter", Fields: bad}
	}
	return out, nil
}

// UpdateStatusInput is an authority status change.
type UpdateStatusInput struct {
	Status         string `json:"status" validate:"required"`
	ResolutionNote string `json:"resolutionNote" validate:"max=2000"`
	// ActorID is the authenticated user making the change, if known.
	ActorID string `json:"-"`
}

// ContentPatch is an owner edit. Only the description can change.
type ContentPatch struct {
	Description *string `json:"description"`
}

// AssignInput records who is responsible for fixing a complaint.
type AssignInput struct {
	ResolverName string `json:"resolverName" validate:"required,max=200"`
	AssignedTo   string `json:"assignedTo" validate:"max=200"`
	ActorID      string `json:"-"`
}
