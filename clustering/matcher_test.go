package clustering

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicecho-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	existing  []models.Complaint
	scanErr   error
	createErr error
	since     time.Time
	created   []*models.Cluster
}

func (f *fakeStore) ClusteredSince(_ context.Context, since time.Time) ([]models.Complaint, error) {
	f.since = since
	return f.existing, f.scanErr
}

func (f *fakeStore) CreateCluster(_ context.Context, c *models.Cluster) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, c)
	return "NEW", nil
}

func newTestMatcher(store Store) *Matcher {
	m := NewMatcher(Config{}, store, nil)
	m.now = func() time.Time { return fixedNow }
	return m
}

func clustered(id string, lat, lon float64, age time.Duration, text string) models.Complaint {
	cid := id
	return models.Complaint{
		ID:          primitive.NewObjectID(),
		Description: text,
		Latitude:    lat,
		Longitude:   lon,
		ClusterID:   &cid,
		CreatedAt:   fixedNow.Add(-age),
	}
}

func candidate(lat, lon float64, text string) *models.Complaint {
	return &models.Complaint{
		ID:          primitive.NewObjectID(),
		Description: text,
		Latitude:    lat,
		Longitude:   lon,
		Category:    models.CategoryRoad,
		Severity:    models.SeverityCritical,
	}
}

const pothole = "huge pothole near the market very dangerous"

func TestMatchNearbyRecentSimilar(t *testing.T) {
	m := newTestMatcher(nil)
	existing := []models.Complaint{clustered("C1", 28.70, 77.10, time.Hour, pothole)}

	id, ok := m.Match(candidate(28.7005, 77.1008, pothole+" today"), existing)
	require.True(t, ok)
	assert.Equal(t, "C1", id)
}

func TestMatchRejections(t *testing.T) {
	m := newTestMatcher(nil)

	tests := []struct {
		name     string
		existing models.Complaint
		text     string
	}{
		{"too far", clustered("C1", 28.718, 77.10, time.Hour, pothole), pothole},
		{"too old", clustered("C1", 28.70, 77.10, 25*time.Hour, pothole), pothole},
		{"too different", clustered("C1", 28.70, 77.10, time.Hour, pothole), "dangerous pothole near market"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := m.Match(candidate(28.70, 77.10, tt.text), []models.Complaint{tt.existing})
			assert.False(t, ok)
		})
	}
}

func TestMatchSkipsUnclustered(t *testing.T) {
	m := newTestMatcher(nil)
	c := clustered("C1", 28.70, 77.10, time.Hour, pothole)
	c.ClusterID = nil

	_, ok := m.Match(candidate(28.70, 77.10, pothole), []models.Complaint{c})
	assert.False(t, ok)
}

func TestMatchBoundaryAge(t *testing.T) {
	m := newTestMatcher(nil)
	c := clustered("C1", 28.70, 77.10, DefaultWindow, pothole)

	id, ok := m.Match(candidate(28.70, 77.10, pothole), []models.Complaint{c})
	require.True(t, ok)
	assert.Equal(t, "C1", id)
}

func TestMatchLastWins(t *testing.T) {
	m := newTestMatcher(nil)
	existing := []models.Complaint{
		clustered("C1", 28.70, 77.10, 2*time.Hour, pothole),
		clustered("C2", 28.70, 77.10, time.Hour, pothole),
	}

	for i := 0; i < 3; i++ {
		id, ok := m.Match(candidate(28.70, 77.10, pothole), existing)
		require.True(t, ok)
		assert.Equal(t, "C2", id)
	}
}

func TestFindOrCreateJoinsExisting(t *testing.T) {
	store := &fakeStore{existing: []models.Complaint{clustered("C1", 28.70, 77.10, time.Hour, pothole)}}
	m := newTestMatcher(store)

	got := m.FindOrCreate(context.Background(), candidate(28.7005, 77.1008, pothole))
	assert.Equal(t, Assignment{ClusterID: "C1"}, got)
	assert.Empty(t, store.created)
	assert.Equal(t, fixedNow.Add(-DefaultWindow), store.since)
}

func TestFindOrCreateFoundsCluster(t *testing.T) {
	store := &fakeStore{existing: []models.Complaint{clustered("C1", 28.70, 77.10, time.Hour, pothole)}}
	m := newTestMatcher(store)
	c := candidate(28.718, 77.10, pothole)

	got := m.FindOrCreate(context.Background(), c)
	assert.Equal(t, Assignment{ClusterID: "NEW", Created: true}, got)

	require.Len(t, store.created, 1)
	cl := store.created[0]
	assert.Equal(t, []string{c.ID.Hex()}, cl.Complaints)
	assert.Equal(t, models.CategoryRoad, cl.Category)
	assert.Equal(t, models.SeverityCritical, cl.Severity)
	assert.Equal(t, models.GeoPoint{Latitude: 28.718, Longitude: 77.10}, cl.Location)
	assert.Equal(t, fixedNow, cl.CreatedAt)
}

func TestFindOrCreateFailuresYieldNoCluster(t *testing.T) {
	t.Run("scan", func(t *testing.T) {
		m := newTestMatcher(&fakeStore{scanErr: errors.New("db down")})
		assert.Equal(t, Assignment{}, m.FindOrCreate(context.Background(), candidate(1, 1, "x")))
	})
	t.Run("create", func(t *testing.T) {
		m := newTestMatcher(&fakeStore{createErr: errors.New("db down")})
		assert.Equal(t, Assignment{}, m.FindOrCreate(context.Background(), candidate(1, 1, "x")))
	})
}

func TestConfigDefaults(t *testing.T) {
	m := NewMatcher(Config{DistanceKm: 1}, nil, nil)
	assert.Equal(t, Config{DistanceKm: 1, Window: DefaultWindow, MinSimilarity: DefaultMinSimilarity}, m.Config())
}

func TestNewStoreCombines(t *testing.T) {
	scan := &fakeStore{existing: []models.Complaint{clustered("C1", 28.70, 77.10, time.Hour, pothole)}}
	create := &fakeStore{}
	m := newTestMatcher(NewStore(scan, create))

	got := m.FindOrCreate(context.Background(), candidate(10, 10, pothole))
	assert.True(t, got.Created)
	assert.Len(t, create.created, 1)
	assert.Empty(t, scan.created)
}
