// Package memstore keeps complaints, clusters and users in process memory. It
// backs local development without MongoDB and the service tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"civicecho-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store bundles the three in-memory repositories.
type Store struct {
	Complaints *Complaints
	Clusters   *Clusters
	Users      *Users
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		Complaints: &Complaints{byID: map[string]*models.Complaint{}, now: time.Now},
		Clusters:   &Clusters{byID: map[string]*models.Cluster{}, now: time.Now},
		Users:      &Users{byID: map[string]*models.User{}, now: time.Now},
	}
}

// Complaints is an in-memory complaint repository.
type Complaints struct {
	mu    sync.RWMutex
	byID  map[string]*models.Complaint
	order []string
	now   func() time.Time
}

func cloneComplaint(c *models.Complaint) *models.Complaint {
	cp := *c
	cp.Upvoters = append([]string(nil), c.Upvoters...)
	return &cp
}

// Insert stores a copy of c.
func (s *Complaints) Insert(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	id := c.ID.Hex()
	if _, ok := s.byID[id]; !ok {
		s.order = append(s.order, id)
	}
	s.byID[id] = cloneComplaint(c)
	return nil
}

// FindByID returns a copy of the complaint.
func (s *Complaints) FindByID(_ context.Context, id string) (*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneComplaint(c), nil
}

// List returns complaints matching f, newest first.
func (s *Complaints) List(_ context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	return s.collect(func(c *models.Complaint) bool {
		return (f.Category == "" || c.Category == f.Category) &&
			(f.Status == "" || c.Status == f.Status) &&
			(f.Severity == "" || c.Severity == f.Severity)
	}, true), nil
}

// ListByOwner returns uid's complaints, newest first.
func (s *Complaints) ListByOwner(_ context.Context, uid string) ([]models.Complaint, error) {
	return s.collect(func(c *models.Complaint) bool { return c.UserID == uid }, true), nil
}

// ClusteredSince returns clustered complaints created at or after since, oldest first.
func (s *Complaints) ClusteredSince(_ context.Context, since time.Time) ([]models.Complaint, error) {
	return s.collect(func(c *models.Complaint) bool {
		return c.HasCluster() && !c.CreatedAt.Before(since)
	}, false), nil
}

// Update applies p.
func (s *Complaints) Update(_ context.Context, id string, p models.ComplaintPatch) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c.Apply(p, s.now())
	return cloneComplaint(c), nil
}

// Delete removes the complaint.
func (s *Complaints) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.byID, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ToggleUpvote flips uid's membership in the upvoter set.
func (s *Complaints) ToggleUpvote(_ context.Context, id, uid string) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if c.HasUpvoted(uid) {
		kept := c.Upvoters[:0]
		for _, u := range c.Upvoters {
			if u != uid {
				kept = append(kept, u)
			}
		}
		c.Upvoters = kept
	} else {
		c.Upvoters = append(c.Upvoters, uid)
	}
	c.Upvotes = len(c.Upvoters)
	c.UpdatedAt = s.now()
	return cloneComplaint(c), nil
}

func (s *Complaints) collect(keep func(*models.Complaint) bool, newestFirst bool) []models.Complaint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Complaint, 0, len(s.order))
	for i := range s.order {
		id := s.order[i]
		if newestFirst {
			// equal timestamps keep the latest insert first
			id = s.order[len(s.order)-1-i]
		}
		if c := s.byID[id]; keep(c) {
			out = append(out, *cloneComplaint(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Clusters is an in-memory cluster repository.
type Clusters struct {
	mu   sync.RWMutex
	byID map[string]*models.Cluster
	now  func() time.Time
}

// CreateCluster stores c and returns its id.
func (s *Clusters) CreateCluster(_ context.Context, c *models.Cluster) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	cp.Complaints = append([]string(nil), c.Complaints...)
	s.byID[c.ID.Hex()] = &cp
	return c.ID.Hex(), nil
}

// AddMember appends complaintID to the cluster once.
func (s *Clusters) AddMember(_ context.Context, clusterID, complaintID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[clusterID]
	if !ok {
		return models.ErrNotFound
	}
	for _, m := range c.Complaints {
		if m == complaintID {
			return nil
		}
	}
	c.Complaints = append(c.Complaints, complaintID)
	c.UpdatedAt = s.now()
	return nil
}

// FindByID returns a copy of the cluster.
func (s *Clusters) FindByID(_ context.Context, id string) (*models.Cluster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *c
	cp.Complaints = append([]string(nil), c.Complaints...)
	return &cp, nil
}

// Count returns the number of clusters.
func (s *Clusters) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

// Users is an in-memory user repository.
type Users struct {
	mu   sync.RWMutex
	byID map[string]*models.User
	now  func() time.Time
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.Badges = append([]string(nil), u.Badges...)
	return &cp
}

// FindByID returns a copy of the profile.
func (s *Users) FindByID(_ context.Context, uid string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[uid]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneUser(u), nil
}

// Create stores u.
func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[u.UID] = cloneUser(u)
	return nil
}

// UpdateEmail refreshes the stored email.
func (s *Users) UpdateEmail(_ context.Context, uid, email string) (*models.User, error) {
	return s.mutate(uid, func(u *models.User) { u.Email = email })
}

// AddPoints increments the user's points.
func (s *Users) AddPoints(_ context.Context, uid string, amount int) (*models.User, error) {
	return s.mutate(uid, func(u *models.User) { u.Points += amount })
}

// AddBadges adds badges the user does not hold yet.
func (s *Users) AddBadges(_ context.Context, uid string, badges []string) error {
	_, err := s.mutate(uid, func(u *models.User) {
		for _, b := range badges {
			held := false
			for _, h := range u.Badges {
				if h == b {
					held = true
					break
				}
			}
			if !held {
				u.Badges = append(u.Badges, b)
			}
		}
	})
	return err
}

// TopByPoints returns up to limit users with role, highest points first.
func (s *Users) TopByPoints(_ context.Context, role models.UserRole, limit int) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.byID))
	for _, u := range s.byID {
		if u.Role == role {
			out = append(out, *cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].UID < out[j].UID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Users) mutate(uid string, fn func(*models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[uid]
	if !ok {
		return nil, models.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = s.now()
	return cloneUser(u), nil
}
