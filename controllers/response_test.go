package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"civicecho-be/models"
	"civicecho-be/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", &services.ValidationError{Message: "invalid fields", Fields: []string{"latitude (required)"}}, http.StatusBadRequest, "invalid fields"},
		{"wrapped not found", fmt.Errorf("load: %w", models.ErrNotFound), http.StatusNotFound, "Not found"},
		{"forbidden", models.ErrForbidden, http.StatusForbidden, "You are not allowed to modify this resource"},
		{"transition", fmt.Errorf("%w: resolved to reported", models.ErrInvalidTransition), http.StatusBadRequest, "Invalid status transition"},
		{"internal", errors.New("mongo: connection reset by peer 10.0.0.3"), http.StatusInternalServerError, "Failed to do thing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)

			respondError(c, tc.err, "Failed to do thing")

			assert.Equal(t, tc.status, w.Code)
			var env Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tc.message, env.Error)
			assert.NotContains(t, w.Body.String(), "10.0.0.3")
		})
	}
}

func TestValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	respondError(c, &services.ValidationError{Message: "invalid filter", Fields: []string{"status", "severity"}}, "")

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "status, severity", env.Details)
}

func TestRespondList(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondList(c, []string{})

	assert.JSONEq(t, `{"success":true,"data":[],"count":0}`, w.Body.String())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "short", title("short"))
	long := strings.Repeat("é", 60)
	assert.Equal(t, string([]rune(long)[:issueTitleLen])+"...", title(long))
}
