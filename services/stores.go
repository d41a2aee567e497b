package services

import (
	"context"

	"civicecho-be/analysis"
	"civicecho-be/clustering"
	"civicecho-be/models"
)

// ComplaintStore is the complaint persistence ComplaintService needs.
type ComplaintStore interface {
	Insert(ctx context.Context, c *models.Complaint) error
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error)
	ListByOwner(ctx context.Context, uid string) ([]models.Complaint, error)
	Update(ctx context.Context, id string, p models.ComplaintPatch) (*models.Complaint, error)
	Delete(ctx context.Context, id string) error
	ToggleUpvote(ctx context.Context, id, uid string) (*models.Complaint, error)
}

// ClusterStore is the cluster persistence the services need beyond clustering.Store.
type ClusterStore interface {
	AddMember(ctx context.Context, clusterID, complaintID string) error
	FindByID(ctx context.Context, id string) (*models.Cluster, error)
	Count(ctx context.Context) (int64, error)
}

// UserStore is the profile persistence UserService needs.
type UserStore interface {
	FindByID(ctx context.Context, uid string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateEmail(ctx context.Context, uid, email string) (*models.User, error)
	AddPoints(ctx context.Context, uid string, amount int) (*models.User, error)
	AddBadges(ctx context.Context, uid string, badges []string) error
	TopByPoints(ctx context.Context, role models.UserRole, limit int) ([]models.User, error)
}

// Classifier assigns category and severity. analysis.Service satisfies it.
type Classifier interface {
	Classify(ctx context.Context, text string) analysis.Result
}

// ClusterAssigner attaches a new complaint to a cluster. clustering.Matcher satisfies it.
type ClusterAssigner interface {
	FindOrCreate(ctx context.Context, c *models.Complaint) clustering.Assignment
}

// PointsAwarder credits a user. UserService satisfies it.
type PointsAwarder interface {
	AwardPoints(ctx context.Context, uid string, amount int, reason string) (*models.User, error)
}
