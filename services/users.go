package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"civicecho-be/logger"
	"civicecho-be/models"
)

// Leaderboard bounds.
const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

// Badge is earned once a user's points reach Threshold.
type Badge struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
}

// Badges are ordered by threshold.
var Badges = []Badge{
	{Name: "Civic Starter", Threshold: 50},
	{Name: "Neighborhood Watch", Threshold: 200},
	{Name: "Community Hero", Threshold: 500},
	{Name: "Legendary Citizen", Threshold: 1000},
}

// BadgesFor returns every badge name earned at points.
func BadgesFor(points int) []string {
	var out []string
	for _, b := range Badges {
		if points >= b.Threshold {
			out = append(out, b.Name)
		}
	}
	return out
}

// LeaderboardEntry is the public view of a ranked citizen.
type LeaderboardEntry struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Points      int      `json:"points"`
	Badges      []string `json:"badges"`
}

// UserService manages profiles, roles and gamification.
type UserService struct {
	users       UserStore
	authorities map[string]struct{}
	log         logger.Logger
	now         func() time.Time
}

// NewUserService returns a UserService. Emails in authorityEmails receive the
// authority role when their profile is first created; the list is fixed for
// the life of the service.
func NewUserService(users UserStore, authorityEmails []string, log logger.Logger) *UserService {
	allow := make(map[string]struct{}, len(authorityEmails))
	for _, e := range authorityEmails {
		if e = models.NormalizeEmail(e); e != "" {
			allow[e] = struct{}{}
		}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &UserService{
		users:       users,
		authorities: allow,
		log:         log.With(logger.String("service", "users")),
		now:         time.Now,
	}
}

// IsAuthorityEmail reports whether email is on the allow-list.
func (s *UserService) IsAuthorityEmail(email string) bool {
	_, ok := s.authorities[models.NormalizeEmail(email)]
	return ok
}

// UpsertProfile creates the profile for uid on first sight, assigning its role
// from the allow-list. Existing profiles keep their stored role.
func (s *UserService) UpsertProfile(ctx context.Context, uid, email string) (*models.User, error) {
	uid = strings.TrimSpace(uid)
	email = models.NormalizeEmail(email)
	if uid == "" || email == "" {
		return nil, invalid("uid and email are required")
	}

	existing, err := s.users.FindByID(ctx, uid)
	switch {
	case err == nil:
		if existing.Email == email {
			return existing, nil
		}
		updated, err := s.users.UpdateEmail(ctx, uid, email)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		return updated, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("load profile: %w", err)
	}

	role := models.RoleCitizen
	if s.IsAuthorityEmail(email) {
		role = models.RoleAuthority
	}
	now := s.now()
	u := &models.User{
		UID:       uid,
		Email:     email,
		Role:      role,
		Points:    0,
		Badges:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	logger.FromContext(ctx, s.log).Info("Created user profile",
		logger.String("user_id", uid),
		logger.String("role", string(role)),
	)
	return u, nil
}

// GetProfile returns the stored profile for uid.
func (s *UserService) GetProfile(ctx context.Context, uid string) (*models.User, error) {
	return s.users.FindByID(ctx, uid)
}

// Role returns the stored role for uid, or citizen when there is no profile.
func (s *UserService) Role(ctx context.Context, uid string) (models.UserRole, error) {
	u, err := s.users.FindByID(ctx, uid)
	if errors.Is(err, models.ErrNotFound) {
		return models.RoleCitizen, nil
	}
	if err != nil {
		return "", fmt.Errorf("load role: %w", err)
	}
	if u.Role == "" {
		return models.RoleCitizen, nil
	}
	return u.Role, nil
}

// AwardPoints credits uid and grants any newly reached badges.
func (s *UserService) AwardPoints(ctx context.Context, uid string, amount int, reason string) (*models.User, error) {
	u, err := s.users.AddPoints(ctx, uid, amount)
	if err != nil {
		return nil, err
	}

	var fresh []string
	for _, b := range BadgesFor(u.Points) {
		if !hasString(u.Badges, b) {
			fresh = append(fresh, b)
		}
	}
	if len(fresh) > 0 {
		if err := s.users.AddBadges(ctx, uid, fresh); err != nil {
			return nil, fmt.Errorf("grant badges: %w", err)
		}
		u.Badges = append(u.Badges, fresh...)
	}

	logger.FromContext(ctx, s.log).Info("Awarded points",
		logger.String("user_id", uid),
		logger.Int("amount", amount),
		logger.String("reason", reason),
		logger.Int("total", u.Points),
		logger.Strings("new_badges", fresh),
	)
	return u, nil
}

// Leaderboard returns the top citizens by points. limit falls back to
// DefaultLeaderboardSize and is capped at MaxLeaderboardSize.
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	users, err := s.users.TopByPoints(ctx, models.RoleCitizen, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	out := make([]LeaderboardEntry, 0, len(users))
	for i := range users {
		u := &users[i]
		badges := u.Badges
		if badges == nil {
			badges = []string{}
		}
		out = append(out, LeaderboardEntry{
			ID:          u.UID,
			DisplayName: u.DisplayName(),
			Points:      u.Points,
			Badges:      badges,
		})
	}
	return out, nil
}

func hasString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
