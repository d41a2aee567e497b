package controllers

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"civicecho-be/logger"
	"civicecho-be/models"
	"civicecho-be/services"

	"github.com/gin-gonic/gin"
)

const issueTitleLen = 50

// AuthorityController serves the authority work queue.
type AuthorityController struct {
	complaints *services.ComplaintService
	users      *services.UserService
}

func NewAuthorityController(complaints *services.ComplaintService, users *services.UserService) *AuthorityController {
	return &AuthorityController{complaints: complaints, users: users}
}

type Reporter struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

type IssueLocation struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Address   *string `json:"address"`
}

// Issue is a complaint as shown in the authority queue.
type Issue struct {
	IssueID          string                   `json:"issueId"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description"`
	Category         models.ComplaintCategory `json:"category"`
	Severity         models.Severity          `json:"severity"`
	Status           models.ComplaintStatus   `json:"status"`
	ReportedBy       Reporter                 `json:"reportedBy"`
	Upvotes          int                      `json:"upvotes"`
	Location         IssueLocation            `json:"location"`
	AssignedResolver *string                  `json:"assignedResolver"`
	AssignedTo       *string                  `json:"assignedTo,omitempty"`
	ClusterID        *string                  `json:"clusterId"`
	CreatedAt        time.Time                `json:"createdAt"`
}

func title(description string) string {
	if utf8.RuneCountInString(description) <= issueTitleLen {
		return description
	}
	return string([]rune(description)[:issueTitleLen]) + "..."
}

// Issues handles GET /authority/issues: every complaint newest first, with
// the reporter's email where a profile exists.
func (ctl *AuthorityController) Issues(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := ctl.complaints.ListAll(ctx)
	if err != nil {
		respondError(c, err, "Failed to fetch issues")
		return
	}

	emails := make(map[string]string)
	out := make([]Issue, 0, len(list))
	for i := range list {
		cm := &list[i]
		out = append(out, Issue{
			IssueID:          cm.ID.Hex(),
			Title:            title(cm.Description),
			Description:      cm.Description,
			Category:         cm.Category,
			Severity:         cm.Severity,
			Status:           cm.Status,
			ReportedBy:       Reporter{UserID: cm.UserID, Email: ctl.reporterEmail(ctx, emails, cm.UserID)},
			Upvotes:          cm.Upvotes,
			Location:         IssueLocation{Latitude: cm.Latitude, Longitude: cm.Longitude, Address: cm.Address},
			AssignedResolver: cm.AssignedResolver,
			AssignedTo:       cm.AssignedTo,
			ClusterID:        cm.ClusterID,
			CreatedAt:        cm.CreatedAt,
		})
	}
	respondList(c, out)
}

// reporterEmail memoizes lookups in seen. Missing profiles yield "".
func (ctl *AuthorityController) reporterEmail(ctx context.Context, seen map[string]string, uid string) string {
	if email, ok := seen[uid]; ok {
		return email
	}
	email := ""
	user, err := ctl.users.GetProfile(ctx, uid)
	switch {
	case err == nil:
		email = user.Email
	case !errors.Is(err, models.ErrNotFound):
		logger.FromContext(ctx, nil).Warn("Reporter lookup failed",
			logger.String("user_id", uid),
			logger.Error(err),
		)
	}
	seen[uid] = email
	return email
}
