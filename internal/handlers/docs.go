package handlers

import (
	"net/http"

	"github.com/alimgiray/peoplebase/internal/docs"
	"github.com/gin-gonic/gin"
)

type DocsHandler struct {
	library *docs.Library
}

func NewDocsHandler(library *docs.Library) *DocsHandler {
	return &DocsHandler{library: library}
}

// Page serves the documentation page named slug
func (h *DocsHandler) Page(slug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := h.library.Page(slug)
		if !ok {
			NewNotFoundHandler().NotFound(c)
			return
		}

		data := page(c, p.Title)
		data["Page"] = p
		c.HTML(http.StatusOK, "doc", data)
	}
}
