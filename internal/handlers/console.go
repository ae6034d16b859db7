package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/alimgiray/peoplebase/internal/mcpserver"
	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/alimgiray/peoplebase/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	consolePath = "/mcp-demo"
	xlsxType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var consoleNotices = map[string]string{
	"created": mcpserver.MsgCreated,
	"updated": mcpserver.MsgUpdated,
	"deleted": mcpserver.MsgDeleted,
}

// ConsoleHandler serves the CRUD console behind sign-in
type ConsoleHandler struct {
	personService *services.PersonService
	exportService *services.ExportService
}

func NewConsoleHandler(personService *services.PersonService, exportService *services.ExportService) *ConsoleHandler {
	return &ConsoleHandler{
		personService: personService,
		exportService: exportService,
	}
}

// Console lists everyone next to the create and lookup forms
func (h *ConsoleHandler) Console(c *gin.Context) {
	data := gin.H{}
	if notice, ok := consoleNotices[c.Query("notice")]; ok {
		data["Notice"] = notice
	}
	h.render(c, http.StatusOK, data)
}

// CreatePerson handles the create form
func (h *ConsoleHandler) CreatePerson(c *gin.Context) {
	input := models.PersonInput{
		Name:        c.PostForm("name"),
		Email:       c.PostForm("email"),
		PhoneNumber: c.PostForm("phoneNumber"),
	}

	if _, err := h.personService.CreatePerson(c.Request.Context(), input); err != nil {
		h.renderFailure(c, err, gin.H{"Form": input})
		return
	}

	c.Redirect(http.StatusSeeOther, consolePath+"?notice=created")
}

// LookupPerson shows one record with its edit form
func (h *ConsoleHandler) LookupPerson(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))

	person, err := h.personService.GetPerson(c.Request.Context(), id)
	if err != nil {
		h.renderFailure(c, err, gin.H{"LookupID": id})
		return
	}

	h.render(c, http.StatusOK, gin.H{"LookupID": id, "Found": person})
}

// UpdatePerson applies the non-blank fields of the edit form
func (h *ConsoleHandler) UpdatePerson(c *gin.Context) {
	id := c.Param("id")

	patch := models.PersonPatch{
		Name:        formValue(c, "name"),
		Email:       formValue(c, "email"),
		PhoneNumber: formValue(c, "phoneNumber"),
	}

	if _, err := h.personService.UpdatePerson(c.Request.Context(), id, patch); err != nil {
		data := gin.H{"LookupID": id}
		if current, getErr := h.personService.GetPerson(c.Request.Context(), id); getErr == nil {
			data["Found"] = current
		}
		h.renderFailure(c, err, data)
		return
	}

	c.Redirect(http.StatusSeeOther, consolePath+"?notice=updated")
}

// DeletePerson handles the delete buttons
func (h *ConsoleHandler) DeletePerson(c *gin.Context) {
	if err := h.personService.DeletePerson(c.Request.Context(), c.Param("id")); err != nil {
		h.renderFailure(c, err, gin.H{})
		return
	}

	c.Redirect(http.StatusSeeOther, consolePath+"?notice=deleted")
}

// ListJSON returns the list or search result in the tool envelope
func (h *ConsoleHandler) ListJSON(c *gin.Context) {
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

	env := mcpserver.List(people)
	status := http.StatusOK
	if err != nil {
		_ = c.Error(err)
		env = mcpserver.FromError(err)
		status = statusFor(err)
	}

	body, err := env.JSON()
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", []byte(body))
}

// Export downloads everyone as a spreadsheet
func (h *ConsoleHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exportService.WriteXLSX(c.Request.Context(), &buf); err != nil {
		_ = c.Error(err)
		renderError(c, http.StatusInternalServerError, "Failed to export people")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="people.xlsx"`)
	c.Data(http.StatusOK, xlsxType, buf.Bytes())
}

// renderFailure shows the console with the error inline
func (h *ConsoleHandler) renderFailure(c *gin.Context, err error, data gin.H) {
	status := statusFor(err)

	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		fields := make(map[string]string, len(vErr.Fields))
		for _, f := range vErr.Fields {
			fields[f.Field] = f.Message
		}
		data["FieldErrors"] = fields
		data["Error"] = vErr.Error()
	case status == http.StatusInternalServerError:
		_ = c.Error(err)
		data["Error"] = mcpserver.MsgInternalError
	default:
		data["Error"] = err.Error()
	}

	h.render(c, status, data)
}

func (h *ConsoleHandler) render(c *gin.Context, status int, extra gin.H) {
	data := page(c, "Console")
	data["Form"] = models.PersonInput{}
	data["FieldErrors"] = map[string]string{}
	for k, v := range extra {
		data[k] = v
	}

	people, err := h.personService.ListPeople(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		renderError(c, http.StatusInternalServerError, "Failed to load people")
		return
	}
	data["People"] = people

	c.HTML(status, "console", data)
}

// formValue returns nil for a blank field so it is left unchanged
func formValue(c *gin.Context, key string) *string {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return nil
	}
	return &v
}
