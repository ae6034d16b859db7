package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type NotFoundHandler struct{}

func NewNotFoundHandler() *NotFoundHandler {
	return &NotFoundHandler{}
}

// NotFound handles 404 errors for non-existent routes
func (h *NotFoundHandler) NotFound(c *gin.Context) {
	data := page(c, "404 - Page Not Found")
	data["RequestedPath"] = c.Request.URL.Path
	data["Timestamp"] = time.Now().Format("2006-01-02 15:04:05")

	c.HTML(http.StatusNotFound, "404", data)
}
