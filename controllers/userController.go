package controllers

import (
	"net/http"
	"strconv"

	"civicecho-be/middlewares"
	"civicecho-be/services"

	"github.com/gin-gonic/gin"
)

// UserController serves profiles and the leaderboard.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// UpsertProfile handles POST /users/profile. The caller's identity comes from
// the token; the email claim wins over the body.
func (ctl *UserController) UpsertProfile(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "Invalid request body", err)
			return
		}
	}
	email := c.GetString(middlewares.UserEmailKey)
	if email == "" {
		email = input.Email
	}

	user, err := ctl.users.UpsertProfile(c.Request.Context(), middlewares.CurrentUserID(c), email)
	if err != nil {
		respondError(c, err, "Failed to save profile")
		return
	}
	respond(c, http.StatusOK, user, "")
}

// GetProfile handles GET /users/profile/:uid.
func (ctl *UserController) GetProfile(c *gin.Context) {
	user, err := ctl.users.GetProfile(c.Request.Context(), c.Param("uid"))
	if err != nil {
		respondError(c, err, "Failed to fetch profile")
		return
	}
	respond(c, http.StatusOK, user, "")
}

// Leaderboard handles GET /users/leaderboard?limit=N.
func (ctl *UserController) Leaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer", nil)
			return
		}
		limit = n
	}

	entries, err := ctl.users.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to fetch leaderboard")
		return
	}
	respondList(c, entries)
}
