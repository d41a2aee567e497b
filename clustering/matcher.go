// Package clustering groups new complaints with recent, nearby, similar ones.
package clustering

import (
	"context"
	"time"

	"civicecho-be/analysis"
	"civicecho-be/geo"
	"civicecho-be/logger"
	"civicecho-be/metrics"
	"civicecho-be/models"
)

// Match thresholds.
const (
	DefaultDistanceKm    = 0.5
	DefaultWindow        = 24 * time.Hour
	DefaultMinSimilarity = 0.8
)

// Config holds the thresholds a candidate must meet to join a cluster.
type Config struct {
	DistanceKm    float64
	Window        time.Duration
	MinSimilarity float64
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		DistanceKm:    DefaultDistanceKm,
		Window:        DefaultWindow,
		MinSimilarity: DefaultMinSimilarity,
	}
}

func (c Config) withDefaults() Config {
	if c.DistanceKm <= 0 {
		c.DistanceKm = DefaultDistanceKm
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MinSimilarity <= 0 {
		c.MinSimilarity = DefaultMinSimilarity
	}
	return c
}

// ComplaintScanner lists clustering candidates.
type ComplaintScanner interface {
	// ClusteredSince returns complaints that carry a cluster id and were created at
	// or after since, in a stable order.
	ClusteredSince(ctx context.Context, since time.Time) ([]models.Complaint, error)
}

// ClusterCreator persists a new cluster and returns its id.
type ClusterCreator interface {
	CreateCluster(ctx context.Context, cluster *models.Cluster) (string, error)
}

// Store is the persistence the matcher needs.
type Store interface {
	ComplaintScanner
	ClusterCreator
}

type splitStore struct {
	ComplaintScanner
	ClusterCreator
}

// NewStore combines separate complaint and cluster repositories into a Store.
func NewStore(complaints ComplaintScanner, clusters ClusterCreator) Store {
	return splitStore{ComplaintScanner: complaints, ClusterCreator: clusters}
}

// Assignment is the outcome of FindOrCreate. An empty ClusterID means the
// complaint stays unclustered.
type Assignment struct {
	ClusterID string
	Created   bool
}

// Matcher assigns complaints to clusters. Two concurrent near-identical
// complaints may each found their own cluster; nothing serializes the scan.
type Matcher struct {
	cfg   Config
	store Store
	log   logger.Logger
	now   func() time.Time
}

// NewMatcher returns a Matcher backed by store. Zero config fields take defaults.
func NewMatcher(cfg Config, store Store, log logger.Logger) *Matcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Matcher{
		cfg:   cfg.withDefaults(),
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Config returns the effective thresholds.
func (m *Matcher) Config() Config {
	return m.cfg
}

// Match scans existing for a complaint within the distance, recency and
// similarity thresholds and returns its cluster id. With several matches the
// last one in scan order wins.
func (m *Matcher) Match(candidate *models.Complaint, existing []models.Complaint) (string, bool) {
	cutoff := m.now().Add(-m.cfg.Window)

	var found string
	for i := range existing {
		other := &existing[i]
		if !other.HasCluster() {
			continue
		}
		if other.CreatedAt.Before(cutoff) {
			continue
		}
		d := geo.DistanceKm(candidate.Latitude, candidate.Longitude, other.Latitude, other.Longitude)
		if d > m.cfg.DistanceKm {
			continue
		}
		if analysis.Similarity(candidate.Description, other.Description) < m.cfg.MinSimilarity {
			continue
		}
		found = *other.ClusterID
	}
	return found, found != ""
}

// FindOrCreate joins candidate to a matching cluster or founds a new one with
// candidate as its only member. Candidate must already carry its final ID.
// Failures are logged and yield an empty Assignment.
func (m *Matcher) FindOrCreate(ctx context.Context, candidate *models.Complaint) Assignment {
	log := logger.FromContext(ctx, m.log)

	existing, err := m.store.ClusteredSince(ctx, m.now().Add(-m.cfg.Window))
	if err != nil {
		log.Warn("Cluster scan failed, leaving complaint unclustered", logger.Error(err))
		metrics.ClusterOutcomes.WithLabelValues(metrics.ClusterFailed).Inc()
		return Assignment{}
	}

	if id, ok := m.Match(candidate, existing); ok {
		metrics.ClusterOutcomes.WithLabelValues(metrics.ClusterMatched).Inc()
		log.Debug("Complaint matched existing cluster", logger.String("cluster_id", id))
		return Assignment{ClusterID: id}
	}

	now := m.now()
	cluster := &models.Cluster{
		Complaints: []string{candidate.ID.Hex()},
		Category:   candidate.Category,
		Severity:   candidate.Severity,
		Location:   models.GeoPoint{Latitude: candidate.Latitude, Longitude: candidate.Longitude},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	id, err := m.store.CreateCluster(ctx, cluster)
	if err != nil || id == "" {
		log.Warn("Cluster creation failed, leaving complaint unclustered", logger.Error(err))
		metrics.ClusterOutcomes.WithLabelValues(metrics.ClusterFailed).Inc()
		return Assignment{}
	}

	metrics.ClusterOutcomes.WithLabelValues(metrics.ClusterCreated).Inc()
	log.Info("Created cluster", logger.String("cluster_id", id))
	return Assignment{ClusterID: id, Created: true}
}
