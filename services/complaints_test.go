package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"civicecho-be/clustering"
	"civicecho-be/models"
	"civicecho-be/repository/memstore"
	"civicecho-be/speech"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	addr string
	err  error
}

func (g stubGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return g.addr, g.err
}

type failingTranscriber struct{}

func (failingTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return "", errors.New("speech backend down")
}

type failingInsert struct {
	ComplaintStore
}

func (failingInsert) Insert(context.Context, *models.Complaint) error {
	return errors.New("write failed")
}

type brokenScanner struct{}

func (brokenScanner) ClusteredSince(context.Context, time.Time) ([]models.Complaint, error) {
	return nil, errors.New("scan failed")
}

type fixture struct {
	store *memstore.Store
	users *UserService
	svc   *ComplaintService
}

func newFixture(t *testing.T, mutate ...func(*ComplaintDeps)) *fixture {
	t.Helper()
	store := memstore.New()
	users := NewUserService(store.Users, nil, nil)
	deps := ComplaintDeps{
		Complaints:  store.Complaints,
		Clusters:    store.Clusters,
		Matcher:     clustering.NewMatcher(clustering.DefaultConfig(), clustering.NewStore(store.Complaints, store.Clusters), nil),
		Geocoder:    stubGeocoder{addr: "MG Road, New Delhi"},
		Transcriber: speech.NewMockTranscriber(nil),
		Rewards:     users,
	}
	for _, m := range mutate {
		m(&deps)
	}
	svc := NewComplaintService(deps)
	clock := time.Now()
	svc.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	return &fixture{store: store, users: users, svc: svc}
}

func ptr[T any](v T) *T { return &v }

func input(desc string, lat, lon float64) CreateComplaintInput {
	return CreateComplaintInput{
		Description: desc,
		Latitude:    ptr(lat),
		Longitude:   ptr(lon),
		UserID:      "citizen-1",
	}
}

func (f *fixture) create(t *testing.T, in CreateComplaintInput) *models.Complaint {
	t.Helper()
	c, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	return c
}

func TestCreateStoresClassifiedComplaint(t *testing.T) {
	f := newFixture(t)

	c := f.create(t, input("water leak causing a dangerous hazard", 28.70, 77.10))

	assert.Equal(t, models.CategoryWater, c.Category)
	assert.Equal(t, models.StatusReported, c.Status)
	assert.Equal(t, models.TypeText, c.ComplaintType)
	assert.Zero(t, c.Upvotes)
	assert.Empty(t, c.Upvoters)
	require.NotNil(t, c.Address)
	assert.Equal(t, "MG Road, New Delhi", *c.Address)

	stored, err := f.svc.GetByID(context.Background(), c.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, c.Description, stored.Description)
}

func TestCreateClustersDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	text := "huge pothole near the market very dangerous"

	first := f.create(t, input(text, 28.70, 77.10))
	require.True(t, first.HasCluster())

	cluster, err := f.store.Clusters.FindByID(ctx, *first.ClusterID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID.Hex()}, cluster.Complaints)
	assert.Equal(t, first.Category, cluster.Category)

	near := f.create(t, input(text+" today", 28.7005, 77.1008))
	require.True(t, near.HasCluster())
	assert.Equal(t, *first.ClusterID, *near.ClusterID)

	cluster, err = f.store.Clusters.FindByID(ctx, *first.ClusterID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID.Hex(), near.ID.Hex()}, cluster.Complaints)

	far := f.create(t, input(text, 28.718, 77.10))
	require.True(t, far.HasCluster())
	assert.NotEqual(t, *first.ClusterID, *far.ClusterID)

	n, err := f.store.Clusters.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestCreateSurvivesCollaboratorFailures(t *testing.T) {
	f := newFixture(t, func(d *ComplaintDeps) {
		d.Geocoder = stubGeocoder{err: errors.New("nominatim down")}
		d.Transcriber = failingTranscriber{}
		d.Matcher = clustering.NewMatcher(clustering.DefaultConfig(), clustering.NewStore(brokenScanner{}, d.Clusters.(*memstore.Clusters)), nil)
	})

	c := f.create(t, CreateComplaintInput{
		ComplaintType: models.TypeVoice,
		Latitude:      ptr(12.97),
		Longitude:     ptr(77.59),
		UserID:        "citizen-1",
	})
	assert.Nil(t, c.Address)
	assert.Nil(t, c.ClusterID)
	assert.Equal(t, speech.SampleTranscript, c.Description)
}

func TestCreateVoiceUsesTranscript(t *testing.T) {
	f := newFixture(t)

	c := f.create(t, CreateComplaintInput{
		ComplaintType: models.TypeVoice,
		Latitude:      ptr(12.97),
		Longitude:     ptr(77.59),
		UserID:        "citizen-1",
		Audio:         []byte("RIFF"),
	})
	assert.Equal(t, speech.SampleTranscript, c.Description)
	assert.Equal(t, models.TypeVoice, c.ComplaintType)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   CreateComplaintInput
	}{
		{"missing description", input("  ", 1, 1)},
		{"missing latitude", CreateComplaintInput{Description: "x", Longitude: ptr(1.0), UserID: "u"}},
		{"latitude out of range", input("x", 91, 1)},
		{"longitude out of range", input("x", 1, -181)},
		{"missing user", CreateComplaintInput{Description: "x", Latitude: ptr(1.0), Longitude: ptr(1.0)}},
		{"bad type", func() CreateComplaintInput { in := input("x", 1, 1); in.ComplaintType = "fax"; return in }()},
		{"description too long", input(strings.Repeat("ü", MaxDescriptionLen+1), 1, 1)},
		{"image too large", func() CreateComplaintInput {
			in := input("x", 1, 1)
			in.ImageBase64 = strings.Repeat("A", MaxImageBase64Len+1)
			return in
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	all, err := f.svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreatePropagatesPersistenceError(t *testing.T) {
	f := newFixture(t, func(d *ComplaintDeps) {
		d.Complaints = failingInsert{d.Complaints}
	})

	_, err := f.svc.Create(context.Background(), input("broken streetlight", 1, 1))
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrValidation)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, input("trash pile near the market", 10, 10))
	f.create(t, input("pothole in the street", 20, 20))
	last := f.create(t, input("another pothole on the road", 30, 30))

	roads, err := f.svc.List(ctx, ListFilter{Category: "road_damage"})
	require.NoError(t, err)
	require.Len(t, roads, 2)
	assert.Equal(t, last.ID, roads[0].ID)

	legacy, err := f.svc.List(ctx, ListFilter{Status: "PENDING"})
	require.NoError(t, err)
	assert.Len(t, legacy, 3)

	_, err = f.svc.List(ctx, ListFilter{Category: "volcano"})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = f.svc.List(ctx, ListFilter{Severity: "apocalyptic"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestListByOwner(t *testing.T) {
	f := newFixture(t)
	mine := f.create(t, input("pothole", 1, 1))
	other := input("garbage", 2, 2)
	other.UserID = "citizen-2"
	f.create(t, other)

	list, err := f.svc.ListByOwner(context.Background(), "citizen-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = f.svc.ListByOwner(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestGetByIDMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestToggleUpvoteIsIdempotentToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t, input("pothole", 1, 1))

	up, err := f.svc.ToggleUpvote(ctx, c.ID.Hex(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, up.Upvotes)
	assert.Contains(t, up.Upvoters, "u1")

	down, err := f.svc.ToggleUpvote(ctx, c.ID.Hex(), "u1")
	require.NoError(t, err)
	assert.Equal(t, c.Upvotes, down.Upvotes)
	assert.NotContains(t, down.Upvoters, "u1")
	assert.Len(t, down.Upvoters, down.Upvotes)

	_, err = f.svc.ToggleUpvote(ctx, c.ID.Hex(), "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateStatusMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.users.UpsertProfile(ctx, "citizen-1", "citizen@example.com")
	require.NoError(t, err)
	c := f.create(t, input("pothole", 1, 1))
	id := c.ID.Hex()

	same, err := f.svc.UpdateStatus(ctx, id, UpdateStatusInput{Status: "reported"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReported, same.Status)

	inProgress, err := f.svc.UpdateStatus(ctx, id, UpdateStatusInput{Status: "VERIFIED", ActorID: "officer", ResolutionNote: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, inProgress.Status)
	assert.Nil(t, inProgress.ResolvedAt)
	assert.Nil(t, inProgress.ResolutionNote)
	require.NotNil(t, inProgress.UpdatedBy)
	assert.Equal(t, "officer", *inProgress.UpdatedBy)

	owner, err := f.users.GetProfile(ctx, "citizen-1")
	require.NoError(t, err)
	assert.Equal(t, PointsForVerifiedComplaint, owner.Points)
	assert.Equal(t, []string{"Civic Starter"}, owner.Badges)

	_, err = f.svc.UpdateStatus(ctx, id, UpdateStatusInput{Status: "reported"})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	resolved, err := f.svc.UpdateStatus(ctx, id, UpdateStatusInput{Status: "resolved", ResolutionNote: " patched "})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.ResolutionNote)
	assert.Equal(t, "patched", *resolved.ResolutionNote)

	_, err = f.svc.UpdateStatus(ctx, id, UpdateStatusInput{Status: "reported"})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = f.svc.UpdateStatus(ctx, id, UpdateStatusInput{Status: "in_progress"})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestUpdateStatusResolvedFromReported(t *testing.T) {
	f := newFixture(t)
	c := f.create(t, input("pothole", 1, 1))

	resolved, err := f.svc.UpdateStatus(context.Background(), c.ID.Hex(), UpdateStatusInput{Status: "resolved"})
	require.NoError(t, err)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Nil(t, resolved.ResolutionNote)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t, input("pothole", 1, 1))

	for _, st := range []string{"", "closed", "archived"} {
		_, err := f.svc.UpdateStatus(ctx, c.ID.Hex(), UpdateStatusInput{Status: st})
		assert.ErrorIs(t, err, models.ErrValidation, st)
	}
	_, err := f.svc.UpdateStatus(ctx, "missing", UpdateStatusInput{Status: "resolved"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t, input("water leak near school", 1, 1))

	_, err := f.svc.UpdateContent(ctx, c.ID.Hex(), "someone-else", ContentPatch{Description: ptr("hacked")})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.svc.UpdateContent(ctx, c.ID.Hex(), "citizen-1", ContentPatch{})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = f.svc.UpdateContent(ctx, c.ID.Hex(), "citizen-1", ContentPatch{Description: ptr("   ")})
	assert.ErrorIs(t, err, models.ErrValidation)

	edited, err := f.svc.UpdateContent(ctx, c.ID.Hex(), "citizen-1", ContentPatch{Description: ptr("garbage everywhere")})
	require.NoError(t, err)
	assert.Equal(t, "garbage everywhere", edited.Description)
	assert.Equal(t, models.CategoryWater, edited.Category)

	_, err = f.svc.UpdateContent(ctx, c.ID.Hex(), "citizen-1", ContentPatch{Description: ptr(strings.Repeat("a", MaxDescriptionLen+1))})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateAcceptsDescriptionAtLimit(t *testing.T) {
	f := newFixture(t)

	desc := strings.Repeat("ü", MaxDescriptionLen)
	c, err := f.svc.Create(context.Background(), input(desc, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, desc, c.Description)

	edited, err := f.svc.UpdateContent(context.Background(), c.ID.Hex(), "citizen-1", ContentPatch{Description: ptr(desc)})
	require.NoError(t, err)
	assert.Equal(t, desc, edited.Description)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t, input("pothole", 1, 1))

	assert.ErrorIs(t, f.svc.Delete(ctx, c.ID.Hex(), "intruder"), models.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, c.ID.Hex(), "citizen-1"))

	_, err := f.svc.GetByID(ctx, c.ID.Hex())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAssignResolver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t, input("pothole", 1, 1))

	_, err := f.svc.AssignResolver(ctx, c.ID.Hex(), AssignInput{ResolverName: "  "})
	assert.ErrorIs(t, err, models.ErrValidation)

	assigned, err := f.svc.AssignResolver(ctx, c.ID.Hex(), AssignInput{ResolverName: "Roads Dept", AssignedTo: "crew-7", ActorID: "officer"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, assigned.Status)
	require.NotNil(t, assigned.AssignedResolver)
	assert.Equal(t, "Roads Dept", *assigned.AssignedResolver)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, "crew-7", *assigned.AssignedTo)

	_, err = f.svc.UpdateStatus(ctx, c.ID.Hex(), UpdateStatusInput{Status: "resolved"})
	require.NoError(t, err)
	_, err = f.svc.AssignResolver(ctx, c.ID.Hex(), AssignInput{ResolverName: "Roads Dept"})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}
