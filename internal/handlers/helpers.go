package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/alimgiray/peoplebase/internal/middleware"
	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/gin-gonic/gin"
)

// page starts the template data every layout needs
func page(c *gin.Context, title string) gin.H {
	return gin.H{
		"Title": title,
		"User":  middleware.GetSession(c),
	}
}

// statusFor maps a person operation error onto an HTTP status
func statusFor(err error) int {
	switch models.KindOf(err) {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindConflict:
		return http.StatusConflict
	case models.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// renderError shows the generic error page
func renderError(c *gin.Context, status int, message string) {
	data := page(c, "Error")
	data["Error"] = message
	c.HTML(status, "error", data)
}

// safeCallback only accepts local absolute paths, anything else becomes "/"
func safeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return raw
}
