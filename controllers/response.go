package controllers

import (
	"errors"
	"net/http"
	"strings"

	"civicecho-be/logger"
	"civicecho-be/models"
	"civicecho-be/services"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

func respondList[T any](c *gin.Context, items []T) {
	n := len(items)
	c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Count: &n})
}

func badRequest(c *gin.Context, msg string, err error) {
	env := Envelope{Error: msg}
	if err != nil {
		env.Details = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, env)
}

// respondError maps service errors onto status codes. Unexpected errors are
// logged and reported with fallback only.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Error: verr.Message, Details: strings.Join(verr.Fields, ", ")})
	case errors.Is(err, models.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Error: err.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Error: "Invalid status transition", Details: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, Envelope{Error: "Not found"})
	case errors.Is(err, models.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, Envelope{Error: "You are not allowed to modify this resource"})
	default:
		logger.FromContext(c.Request.Context(), nil).Error(fallback,
			logger.String("path", c.FullPath()),
			logger.Error(err),
		)
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{Error: fallback})
	}
}
