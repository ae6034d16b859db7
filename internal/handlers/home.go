package handlers

import (
	"net/http"
	"strings"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/alimgiray/peoplebase/internal/services"
	"github.com/gin-gonic/gin"
)

type HomeHandler struct {
	personService *services.PersonService
}

func NewHomeHandler(personService *services.PersonService) *HomeHandler {
	return &HomeHandler{
		personService: personService,
	}
}

// Index handles the home page: a name search, or everyone when q is empty
func (h *HomeHandler) Index(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	var (
		people []*models.Person
		err    error
	)
	if query != "" {
		people, err = h.personService.SearchPeople(c.Request.Context(), query)
	} else {
		people, err = h.personService.ListPeople(c.Request.Context())
	}
	if err != nil {
		_ = c.Error(err)
		renderError(c, http.StatusInternalServerError, "Failed to load people")
		return
	}

	data := page(c, "Home")
	data["Query"] = query
	data["People"] = people

	c.HTML(http.StatusOK, "index", data)
}

// ViewPerson shows a single record
func (h *HomeHandler) ViewPerson(c *gin.Context) {
	person, err := h.personService.GetPerson(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			data := page(c, "Person not found")
			data["Error"] = models.ErrNotFound.Error()
			data["RequestedPath"] = c.Request.URL.Path
			c.HTML(http.StatusNotFound, "404", data)
			return
		}
		_ = c.Error(err)
		renderError(c, status, "Failed to load person")
		return
	}

	data := page(c, person.Name)
	data["Person"] = person

	c.HTML(http.StatusOK, "person", data)
}
