package mcpserver

import (
	"encoding/json"

	"github.com/alimgiray/peoplebase/internal/models"
)

// Messages shared with the web console
const (
	MsgCreated       = "Person created successfully"
	MsgUpdated       = "Person updated successfully"
	MsgDeleted       = "Person deleted successfully"
	MsgInternalError = "Internal server error"
)

// Envelope is the JSON body every tool returns. Build it with Success, List
// or Failure rather than by hand.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	kind models.ErrorKind
	// answered marks a failure that is a normal answer, not a tool error
	answered bool
}

// Success wraps a single result
func Success(data any, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

// List wraps a list result with its count. An empty list stays [].
func List(people []*models.Person) Envelope {
	if people == nil {
		people = []*models.Person{}
	}
	n := len(people)
	return Envelope{Success: true, Data: people, Count: &n}
}

// Failure reports an error of the given kind
func Failure(kind models.ErrorKind, message string) Envelope {
	return Envelope{Success: false, Error: message, kind: kind}
}

// Missing reports a lookup that found nothing. The result is not flagged as
// a tool error.
func Missing(message string) Envelope {
	env := Failure(models.KindNotFound, message)
	env.answered = true
	return env
}

// FromError turns a service error into a failure. Internal errors are not
// echoed back to the caller.
func FromError(err error) Envelope {
	kind := models.KindOf(err)
	if kind == models.KindInternal {
		return Failure(kind, MsgInternalError)
	}
	return Failure(kind, err.Error())
}

// Kind is empty for successful envelopes
func (e Envelope) Kind() models.ErrorKind {
	return e.kind
}

// IsToolError reports whether the result should carry isError
func (e Envelope) IsToolError() bool {
	return !e.Success && !e.answered
}

// JSON renders the envelope indented by two spaces
func (e Envelope) JSON() (string, error) {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
