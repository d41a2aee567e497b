package controllers

import (
	"net/http"

	"civicecho-be/middlewares"
	"civicecho-be/models"
	"civicecho-be/services"

	"github.com/gin-gonic/gin"
)

// ComplaintController serves /api/complaints.
type ComplaintController struct {
	complaints *services.ComplaintService
}

// NewComplaintController returns a controller backed by complaints.
func NewComplaintController(complaints *services.ComplaintService) *ComplaintController {
	return &ComplaintController{complaints: complaints}
}

// ComplaintView adds the caller-relative reportedBy marker to a complaint.
type ComplaintView struct {
	models.Complaint
	ReportedBy string `json:"reportedBy,omitempty"`
}

func viewsFor(list []models.Complaint, uid string) []ComplaintView {
	out := make([]ComplaintView, 0, len(list))
	for i := range list {
		v := ComplaintView{Complaint: list[i], ReportedBy: "others"}
		if list[i].IsOwnedBy(uid) {
			v.ReportedBy = "me"
		}
		out = append(out, v)
	}
	return out
}

// Create handles POST /complaints. An authenticated caller is the owner;
// anonymous submissions must name a userId in the body.
func (ctl *ComplaintController) Create(c *gin.Context) {
	var input services.CreateComplaintInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if uid := middlewares.CurrentUserID(c); uid != "" {
		input.UserID = uid
	}

	complaint, err := ctl.complaints.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to create complaint")
		return
	}
	respond(c, http.StatusCreated, complaint, "Complaint created successfully")
}

// List handles GET /complaints?category=&status=&severity=.
func (ctl *ComplaintController) List(c *gin.Context) {
	list, err := ctl.complaints.List(c.Request.Context(), services.ListFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Severity: c.Query("severity"),
	})
	if err != nil {
		respondError(c, err, "Failed to fetch complaints")
		return
	}
	respondList(c, viewsFor(list, middlewares.CurrentUserID(c)))
}

// Get handles GET /complaints/:id.
func (ctl *ComplaintController) Get(c *gin.Context) {
	complaint, err := ctl.complaints.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch complaint")
		return
	}
	respond(c, http.StatusOK, complaint, "")
}

// UpdateStatus handles PATCH/PUT /complaints/:id/status.
func (ctl *ComplaintController) UpdateStatus(c *gin.Context) {
	var input services.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Status is required", err)
		return
	}
	input.ActorID = middlewares.CurrentUserID(c)

	complaint, err := ctl.complaints.UpdateStatus(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err, "Failed to update complaint status")
		return
	}
	respond(c, http.StatusOK, complaint, "Complaint status updated to "+string(complaint.Status))
}

// Assign handles POST /complaints/:id/assign.
func (ctl *ComplaintController) Assign(c *gin.Context) {
	var input services.AssignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "resolverName is required", err)
		return
	}
	input.ActorID = middlewares.CurrentUserID(c)

	complaint, err := ctl.complaints.AssignResolver(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err, "Failed to assign complaint")
		return
	}
	respond(c, http.StatusOK, complaint, "Complaint assigned successfully")
}

// Update handles PATCH /complaints/:id for the owner.
func (ctl *ComplaintController) Update(c *gin.Context) {
	var patch services.ContentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	complaint, err := ctl.complaints.UpdateContent(c.Request.Context(), c.Param("id"), middlewares.CurrentUserID(c), patch)
	if err != nil {
		respondError(c, err, "Failed to update complaint")
		return
	}
	respond(c, http.StatusOK, complaint, "Complaint updated successfully")
}

// Delete handles DELETE /complaints/:id for the owner.
func (ctl *ComplaintController) Delete(c *gin.Context) {
	if err := ctl.complaints.Delete(c.Request.Context(), c.Param("id"), middlewares.CurrentUserID(c)); err != nil {
		respondError(c, err, "Failed to delete complaint")
		return
	}
	respond(c, http.StatusOK, nil, "Complaint deleted successfully")
}

// Upvote handles POST /complaints/:id/upvote.
func (ctl *ComplaintController) Upvote(c *gin.Context) {
	complaint, err := ctl.complaints.ToggleUpvote(c.Request.Context(), c.Param("id"), middlewares.CurrentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to upvote complaint")
		return
	}
	message := "Upvote removed"
	if complaint.HasUpvoted(middlewares.CurrentUserID(c)) {
		message = "Complaint upvoted"
	}
	respond(c, http.StatusOK, complaint, message)
}

// Mine handles GET /dashboard/my-complaints.
func (ctl *ComplaintController) Mine(c *gin.Context) {
	list, err := ctl.complaints.ListByOwner(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch your complaints")
		return
	}
	respondList(c, list)
}
