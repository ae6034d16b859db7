package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// Tool names
const (
	ToolCreatePerson   = "create_person"
	ToolGetPerson      = "get_person"
	ToolSearchPersons  = "search_persons"
	ToolListAllPersons = "list_all_persons"
	ToolUpdatePerson   = "update_person"
	ToolDeletePerson   = "delete_person"
)

// PersonOperations is the part of services.PersonService the tools call
type PersonOperations interface {
	CreatePerson(ctx context.Context, input models.PersonInput) (*models.Person, error)
	GetPerson(ctx context.Context, id string) (*models.Person, error)
	SearchPeople(ctx context.Context, query string) ([]*models.Person, error)
	ListPeople(ctx context.Context) ([]*models.Person, error)
	UpdatePerson(ctx context.Context, id string, patch models.PersonPatch) (*models.Person, error)
	DeletePerson(ctx context.Context, id string) error
}

type toolHandlers struct {
	people PersonOperations
	log    logrus.FieldLogger
}

type idArgs struct {
	ID string `json:"id"`
}

type searchArgs struct {
	Query string `json:"query"`
}

type updateArgs struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
}

func (h *toolHandlers) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(ToolCreatePerson,
				mcp.WithDescription("Create a new person in the database"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Full name of the person (minimum 2 characters)")),
				mcp.WithString("email", mcp.Required(), mcp.Description("Email address (must be unique)")),
				mcp.WithString("phoneNumber", mcp.Required(), mcp.Description("Phone number in format 04XXXXXXXX")),
			),
			Handler: h.wrap(ToolCreatePerson, h.createPerson),
		},
		{
			Tool: mcp.NewTool(ToolGetPerson,
				mcp.WithDescription("Get a person by ID"),
				mcp.WithString("id", mcp.Required(), mcp.Description("UUID of the person")),
			),
			Handler: h.wrap(ToolGetPerson, h.getPerson),
		},
		{
			Tool: mcp.NewTool(ToolSearchPersons,
				mcp.WithDescription("Search persons by name (case-insensitive)"),
				mcp.WithString("query", mcp.Required(), mcp.Description("Search query for person name")),
			),
			Handler: h.wrap(ToolSearchPersons, h.searchPersons),
		},
		{
			Tool: mcp.NewTool(ToolListAllPersons,
				mcp.WithDescription("List all persons in the database"),
			),
			Handler: h.wrap(ToolListAllPersons, h.listAllPersons),
		},
		{
			Tool: mcp.NewTool(ToolUpdatePerson,
				mcp.WithDescription("Update a person by ID"),
				mcp.WithString("id", mcp.Required(), mcp.Description("UUID of the person to update")),
				mcp.WithString("name", mcp.Description("New name (optional)")),
				mcp.WithString("email", mcp.Description("New email (optional)")),
				mcp.WithString("phoneNumber", mcp.Description("New phone number (optional)")),
			),
			Handler: h.wrap(ToolUpdatePerson, h.updatePerson),
		},
		{
			Tool: mcp.NewTool(ToolDeletePerson,
				mcp.WithDescription("Delete a person by ID"),
				mcp.WithString("id", mcp.Required(), mcp.Description("UUID of the person to delete")),
			),
			Handler: h.wrap(ToolDeletePerson, h.deletePerson),
		},
	}
}

type envelopeHandler func(ctx context.Context, req mcp.CallToolRequest) Envelope

// wrap renders the envelope as the single text content of the result and
// flags tool errors with isError
func (h *toolHandlers) wrap(name string, fn envelopeHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		env := fn(ctx, req)

		text, err := env.JSON()
		if err != nil {
			return nil, err
		}

		entry := h.log.WithField("tool", name)
		if env.IsToolError() {
			entry.WithField("kind", env.Kind()).Warn("tool call failed")
			return mcp.NewToolResultError(text), nil
		}
		entry.Debug("tool call succeeded")
		return mcp.NewToolResultText(text), nil
	}
}

// bindArguments decodes the raw tool arguments into dst
func bindArguments(req mcp.CallToolRequest, dst any) *Envelope {
	raw, err := json.Marshal(req.Params.Arguments)
	if err == nil {
		err = json.Unmarshal(raw, dst)
	}
	if err != nil {
		env := Failure(models.KindValidation, "Invalid arguments: "+err.Error())
		return &env
	}
	return nil
}

func (h *toolHandlers) createPerson(ctx context.Context, req mcp.CallToolRequest) Envelope {
	var args models.PersonInput
	if env := bindArguments(req, &args); env != nil {
		return *env
	}

	person, err := h.people.CreatePerson(ctx, args)
	if err != nil {
		return FromError(err)
	}
	return Success(person, MsgCreated)
}

func (h *toolHandlers) getPerson(ctx context.Context, req mcp.CallToolRequest) Envelope {
	var args idArgs
	if env := bindArguments(req, &args); env != nil {
		return *env
	}

	person, err := h.people.GetPerson(ctx, args.ID)
	if errors.Is(err, models.ErrNotFound) {
		return Missing(models.ErrNotFound.Error())
	}
	if err != nil {
		return FromError(err)
	}
	return Success(person, "")
}

func (h *toolHandlers) searchPersons(ctx context.Context, req mcp.CallToolRequest) Envelope {
	var args searchArgs
	if env := bindArguments(req, &args); env != nil {
		return *env
	}

	people, err := h.people.SearchPeople(ctx, args.Query)
	if err != nil {
		return FromError(err)
	}
	return List(people)
}

func (h *toolHandlers) listAllPersons(ctx context.Context, _ mcp.CallToolRequest) Envelope {
	people, err := h.people.ListPeople(ctx)
	if err != nil {
		return FromError(err)
	}
	return List(people)
}

func (h *toolHandlers) updatePerson(ctx context.Context, req mcp.CallToolRequest) Envelope {
	var args updateArgs
	if env := bindArguments(req, &args); env != nil {
		return *env
	}

	person, err := h.people.UpdatePerson(ctx, args.ID, models.PersonPatch{
		Name:        args.Name,
		Email:       args.Email,
		PhoneNumber: args.PhoneNumber,
	})
	if err != nil {
		return FromError(err)
	}
	return Success(person, MsgUpdated)
}

func (h *toolHandlers) deletePerson(ctx context.Context, req mcp.CallToolRequest) Envelope {
	var args idArgs
	if env := bindArguments(req, &args); env != nil {
		return *env
	}

	if err := h.people.DeletePerson(ctx, args.ID); err != nil {
		return FromError(err)
	}
	return Success(nil, MsgDeleted)
}
