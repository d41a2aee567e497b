// Package services holds the complaint, dashboard and user business logic.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"civicecho-be/analysis"
	"civicecho-be/clustering"
	"civicecho-be/geo"
	"civicecho-be/logger"
	"civicecho-be/metrics"
	"civicecho-be/models"
	"civicecho-be/speech"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PointsForVerifiedComplaint is credited to the owner when an authority picks up a report.
const PointsForVerifiedComplaint = 50

// DefaultCollaboratorTimeout bounds geocoding and transcription per request.
const DefaultCollaboratorTimeout = 5 * time.Second

// ComplaintDeps wires a ComplaintService. Geocoder, Transcriber and Rewards
// are optional.
type ComplaintDeps struct {
	Complaints  ComplaintStore
	Clusters    ClusterStore
	Matcher     ClusterAssigner
	Classifier  Classifier
	Geocoder    geo.Geocoder
	Transcriber speech.Transcriber
	Rewards     PointsAwarder
	Logger      logger.Logger
	Timeout     time.Duration
}

// ComplaintService orchestrates classification, clustering and persistence.
type ComplaintService struct {
	complaints  ComplaintStore
	clusters    ClusterStore
	matcher     ClusterAssigner
	classifier  Classifier
	geocoder    geo.Geocoder
	transcriber speech.Transcriber
	rewards     PointsAwarder
	log         logger.Logger
	timeout     time.Duration
	now         func() time.Time
}

// NewComplaintService builds the service from deps.
func NewComplaintService(deps ComplaintDeps) *ComplaintService {
	s := &ComplaintService{
		complaints:  deps.Complaints,
		clusters:    deps.Clusters,
		matcher:     deps.Matcher,
		classifier:  deps.Classifier,
		geocoder:    deps.Geocoder,
		transcriber: deps.Transcriber,
		rewards:     deps.Rewards,
		log:         deps.Logger,
		timeout:     deps.Timeout,
		now:         time.Now,
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.timeout <= 0 {
		s.timeout = DefaultCollaboratorTimeout
	}
	s.log = s.log.With(logger.String("service", "complaints"))
	if s.classifier == nil {
		s.classifier = analysis.NewService(s.log)
	}
	return s
}

// Create validates, classifies, clusters and stores a new complaint. Only the
// final insert can fail the request once input is valid.
func (s *ComplaintService) Create(ctx context.Context, in CreateComplaintInput) (*models.Complaint, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !geo.ValidCoordinates(*in.Latitude, *in.Longitude) {
		return nil, invalid("invalid coordinates")
	}

	log := logger.FromContext(ctx, s.log)

	description := in.Description
	if description == "" && in.ComplaintType == models.TypeVoice {
		description = s.transcribe(ctx, in.Audio, in.LanguageCode)
	}
	if description == "" {
		return nil, invalid("description is required")
	}

	now := s.now()
	c := &models.Complaint{
		ID:            primitive.NewObjectID(),
		Description:   description,
		Latitude:      *in.Latitude,
		Longitude:     *in.Longitude,
		Address:       s.reverseGeocode(ctx, *in.Latitude, *in.Longitude),
		ComplaintType: in.ComplaintType,
		AudioURL:      optional(in.AudioURL),
		ImageBase64:   optional(in.ImageBase64),
		Status:        models.StatusReported,
		Upvotes:       0,
		Upvoters:      []string{},
		UserID:        in.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	res := s.classifier.Classify(ctx, description)
	c.Category = res.Category
	c.Severity = res.Severity
	c.Sentiment = res.Sentiment

	assignment := s.assignCluster(ctx, c)
	if assignment.ClusterID != "" {
		c.ClusterID = &assignment.ClusterID
	}

	if err := s.complaints.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("create complaint: %w", err)
	}

	if assignment.ClusterID != "" && !assignment.Created && s.clusters != nil {
		if err := s.clusters.AddMember(ctx, assignment.ClusterID, c.ID.Hex()); err != nil {
			log.Warn("Failed to record cluster membership",
				logger.String("cluster_id", assignment.ClusterID),
				logger.String("complaint_id", c.ID.Hex()),
				logger.Error(err),
			)
		}
	}

	metrics.ComplaintsCreated.WithLabelValues(string(c.Category), string(c.Severity)).Inc()
	log.Info("Complaint created",
		logger.String("complaint_id", c.ID.Hex()),
		logger.String("category", string(c.Category)),
		logger.String("severity", string(c.Severity)),
		logger.Bool("clustered", c.HasCluster()),
	)
	return c, nil
}

func (s *ComplaintService) assignCluster(ctx context.Context, c *models.Complaint) clustering.Assignment {
	if s.matcher == nil {
		return clustering.Assignment{}
	}
	return s.matcher.FindOrCreate(ctx, c)
}

func (s *ComplaintService) transcribe(ctx context.Context, audio []byte, lang string) string {
	if s.transcriber == nil {
		return speech.SampleTranscript
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.transcriber.Transcribe(ctx, audio, lang)
	if err != nil || strings.TrimSpace(text) == "" {
		logger.FromContext(ctx, s.log).Warn("Transcription unavailable, using sample transcript", logger.Error(err))
		metrics.CollaboratorFallbacks.WithLabelValues("speech").Inc()
		return speech.SampleTranscript
	}
	return strings.TrimSpace(text)
}

func (s *ComplaintService) reverseGeocode(ctx context.Context, lat, lon float64) *string {
	if s.geocoder == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addr, err := s.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		logger.FromContext(ctx, s.log).Warn("Reverse geocoding failed", logger.Error(err))
		metrics.CollaboratorFallbacks.WithLabelValues("geocoder").Inc()
		return nil
	}
	return optional(addr)
}

// GetByID returns one complaint.
func (s *ComplaintService) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	return s.complaints.FindByID(ctx, id)
}

// List returns complaints matching every present filter, newest first.
func (s *ComplaintService) List(ctx context.Context, f ListFilter) ([]models.Complaint, error) {
	filter, err := f.parse()
	if err != nil {
		return nil, err
	}
	out, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return out, nil
}

// ListAll returns every complaint, newest first.
func (s *ComplaintService) ListAll(ctx context.Context) ([]models.Complaint, error) {
	return s.List(ctx, ListFilter{})
}

// ListByOwner returns the complaints submitted by uid, newest first.
func (s *ComplaintService) ListByOwner(ctx context.Context, uid string) ([]models.Complaint, error) {
	if uid == "" {
		return nil, invalid("user id is required")
	}
	out, err := s.complaints.ListByOwner(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list complaints by owner: %w", err)
	}
	return out, nil
}

// UpdateStatus moves a complaint forward in its lifecycle. Reverting to
// reported fails with models.ErrInvalidTransition. The resolution note and
// timestamp are recorded only on the move to resolved.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id string, in UpdateStatusInput) (*models.Complaint, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	next, ok := models.ParseStatus(in.Status)
	if !ok || next == models.StatusClosed {
		return nil, invalid("invalid status %q", in.Status)
	}

	current, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", models.ErrInvalidTransition, current.Status, next)
	}

	patch := models.ComplaintPatch{Status: &next, UpdatedBy: optional(in.ActorID)}
	if next == models.StatusResolved && current.Status != models.StatusResolved {
		now := s.now()
		patch.ResolvedAt = &now
		patch.ResolutionNote = optional(strings.TrimSpace(in.ResolutionNote))
	}

	updated, err := s.complaints.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update complaint status: %w", err)
	}

	if current.Status == models.StatusReported && next == models.StatusInProgress {
		s.reward(ctx, updated)
	}
	return updated, nil
}

func (s *ComplaintService) reward(ctx context.Context, c *models.Complaint) {
	if s.rewards == nil || c.UserID == "" {
		return
	}
	if _, err := s.rewards.AwardPoints(ctx, c.UserID, PointsForVerifiedComplaint, "complaint verified"); err != nil && !errors.Is(err, models.ErrNotFound) {
		logger.FromContext(ctx, s.log).Warn("Failed to award points",
			logger.String("user_id", c.UserID),
			logger.Error(err),
		)
	}
}

// UpdateContent edits the description of a complaint owned by ownerID.
// Category and severity are kept as classified at creation.
func (s *ComplaintService) UpdateContent(ctx context.Context, id, ownerID string, p ContentPatch) (*models.Complaint, error) {
	if p.Description == nil {
		return nil, invalid("nothing to update")
	}
	desc := strings.TrimSpace(*p.Description)
	if desc == "" {
		return nil, invalid("description cannot be empty")
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLen {
		return nil, invalid("description exceeds %d characters", MaxDescriptionLen)
	}

	current, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsOwnedBy(ownerID) {
		return nil, models.ErrForbidden
	}

	updated, err := s.complaints.Update(ctx, id, models.ComplaintPatch{Description: &desc})
	if err != nil {
		return nil, fmt.Errorf("update complaint: %w", err)
	}
	return updated, nil
}

// Delete removes a complaint owned by ownerID.
func (s *ComplaintService) Delete(ctx context.Context, id, ownerID string) error {
	current, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.IsOwnedBy(ownerID) {
		return models.ErrForbidden
	}
	if err := s.complaints.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}
	return nil
}

// ToggleUpvote adds uid to the upvoters, or removes it if already present.
func (s *ComplaintService) ToggleUpvote(ctx context.Context, id, uid string) (*models.Complaint, error) {
	if uid == "" {
		return nil, invalid("user id is required")
	}
	return s.complaints.ToggleUpvote(ctx, id, uid)
}

// AssignResolver records the responsible resolver and moves the complaint to
// in_progress. Resolved complaints cannot be reassigned.
func (s *ComplaintService) AssignResolver(ctx context.Context, id string, in AssignInput) (*models.Complaint, error) {
	in.ResolverName = strings.TrimSpace(in.ResolverName)
	in.AssignedTo = strings.TrimSpace(in.AssignedTo)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	current, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := models.StatusInProgress
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot assign a %s complaint", models.ErrInvalidTransition, current.Status)
	}

	updated, err := s.complaints.Update(ctx, id, models.ComplaintPatch{
		Status:           &next,
		AssignedResolver: &in.ResolverName,
		AssignedTo:       optional(in.AssignedTo),
		UpdatedBy:        optional(in.ActorID),
	})
	if err != nil {
		return nil, fmt.Errorf("assign complaint: %w", err)
	}

	if current.Status == models.StatusReported {
		s.reward(ctx, updated)
	}
	return updated, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
