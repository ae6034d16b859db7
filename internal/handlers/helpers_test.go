package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSafeCallback(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "/"},
		{"/mcp-demo", "/mcp-demo"},
		{"/mcp-demo?tab=create", "/mcp-demo?tab=create"},
		{"https://evil.example.com", "/"},
		{"//evil.example.com/path", "/"},
		{"/\\evil.example.com", "/"},
		{"mcp-demo", "/"},
		{"javascript:alert(1)", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, safeCallback(tt.raw))
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&models.ValidationError{Fields: []models.FieldError{{Field: "name"}}}))
	assert.Equal(t, http.StatusConflict, statusFor(models.ErrEmailTaken))
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("get: %w", models.ErrNotFound)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"healthy", nil, http.StatusOK, `{"status":"ok","database":"ok"}`},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable, `{"status":"unavailable","database":"unreachable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", NewHealthHandler(fakePinger{err: tt.err}).HealthCheck)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestFormValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Request.PostForm = map[string][]string{"name": {"  Jane  "}, "email": {"   "}}

	assert.Equal(t, "Jane", *formValue(c, "name"))
	assert.Nil(t, formValue(c, "email"))
	assert.Nil(t, formValue(c, "phoneNumber"))
}
