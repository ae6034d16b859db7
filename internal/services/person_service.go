package services

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/alimgiray/peoplebase/internal/metrics"
	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

// PersonStore is the persistence the service needs.
// *repositories.PersonRepository satisfies it.
type PersonStore interface {
	Create(ctx context.Context, person *models.Person) error
	GetByID(ctx context.Context, id string) (*models.Person, error)
	SearchByName(ctx context.Context, query string) ([]*models.Person, error)
	GetAll(ctx context.Context) ([]*models.Person, error)
	Update(ctx context.Context, id string, patch models.PersonPatch, updatedAt time.Time) (*models.Person, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// Operation names used in logs and metrics
const (
	OpCreate = "create"
	OpGet    = "get"
	OpSearch = "search"
	OpList   = "list"
	OpUpdate = "update"
	OpDelete = "delete"
)

// PersonService implements the person operations shared by the web UI and
// the tool server
type PersonService struct {
	store    PersonStore
	recorder metrics.Recorder
	log      logrus.FieldLogger
	policy   *bluemonday.Policy
	now      func() time.Time
}

func NewPersonService(store PersonStore, recorder metrics.Recorder, log logrus.FieldLogger) *PersonService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &PersonService{
		store:    store,
		recorder: recorder,
		log:      log,
		policy:   bluemonday.StrictPolicy(),
		now: func() time.Time {
			// postgres keeps microseconds, keep both drivers consistent
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// maxStripPasses bounds plainText for deeply entity-encoded input
const maxStripPasses = 4

// plainText strips markup, including entity-encoded markup, so names are
// always stored as plain text. Whitespace left behind by removed tags is
// trimmed.
func (s *PersonService) plainText(v string) string {
	for i := 0; i < maxStripPasses; i++ {
		stripped := html.UnescapeString(s.policy.Sanitize(html.UnescapeString(v)))
		if stripped == v {
			break
		}
		v = stripped
	}
	return strings.TrimSpace(v)
}

func (s *PersonService) record(op string, err error) {
	outcome := "success"
	if kind := models.KindOf(err); kind != "" {
		outcome = string(kind)
	}
	s.recorder.RecordOperation(op, outcome)
}

// CreatePerson validates input and stores a new person
func (s *PersonService) CreatePerson(ctx context.Context, input models.PersonInput) (*models.Person, error) {
	input = input.Normalize()
	input.Name = s.plainText(input.Name)

	if err := input.Validate(); err != nil {
		s.record(OpCreate, err)
		return nil, err
	}

	person := models.NewPerson(input, s.now())
	if err := s.store.Create(ctx, person); err != nil {
		s.record(OpCreate, err)
		return nil, err
	}

	s.record(OpCreate, nil)
	s.log.WithFields(logrus.Fields{"person_id": person.ID, "operation": OpCreate}).Info("person created")
	return person, nil
}

// GetPerson returns the person with id or models.ErrNotFound
func (s *PersonService) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	if id == "" {
		s.record(OpGet, models.ErrNotFound)
		return nil, models.ErrNotFound
	}

	person, err := s.store.GetByID(ctx, id)
	s.record(OpGet, err)
	return person, err
}

// SearchPeople returns people whose name contains query, ignoring case
func (s *PersonService) SearchPeople(ctx context.Context, query string) ([]*models.Person, error) {
	people, err := s.store.SearchByName(ctx, query)
	s.record(OpSearch, err)
	return people, err
}

// ListPeople returns everyone ordered by name
func (s *PersonService) ListPeople(ctx context.Context) ([]*models.Person, error) {
	people, err := s.store.GetAll(ctx)
	s.record(OpList, err)
	return people, err
}

// UpdatePerson validates the supplied fields and merges them onto the stored record
func (s *PersonService) UpdatePerson(ctx context.Context, id string, patch models.PersonPatch) (*models.Person, error) {
	patch = patch.Normalize()
	if patch.Name != nil {
		name := s.plainText(*patch.Name)
		patch.Name = &name
	}

	if err := patch.Validate(); err != nil {
		s.record(OpUpdate, err)
		return nil, err
	}
	if id == "" {
		s.record(OpUpdate, models.ErrNotFound)
		return nil, models.ErrNotFound
	}

	person, err := s.store.Update(ctx, id, patch, s.now())
	if err != nil {
		s.record(OpUpdate, err)
		return nil, err
	}

	s.record(OpUpdate, nil)
	s.log.WithFields(logrus.Fields{
		"person_id":  id,
		"operation":  OpUpdate,
		"touch_only": patch.IsEmpty(),
	}).Info("person updated")
	return person, nil
}

// DeletePerson removes the person with id
func (s *PersonService) DeletePerson(ctx context.Context, id string) error {
	if id == "" {
		s.record(OpDelete, models.ErrNotFound)
		return models.ErrNotFound
	}

	err := s.store.Delete(ctx, id)
	s.record(OpDelete, err)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"person_id": id, "operation": OpDelete}).Info("person deleted")
	return nil
}

// DeleteAllPeople empties the table. Only the seeder uses it.
func (s *PersonService) DeleteAllPeople(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.log.WithField("deleted", n).Warn("all people deleted")
	return n, nil
}

// Ping checks the backing store
func (s *PersonService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
