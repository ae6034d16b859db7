package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/alimgiray/peoplebase/internal/repositories"
	"github.com/alimgiray/peoplebase/pkg/config"
	"github.com/alimgiray/peoplebase/pkg/database"
	"github.com/alimgiray/peoplebase/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	calls map[string]int
}

func (r *countingRecorder) RecordOperation(operation, outcome string) {
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[operation+"/"+outcome]++
}

func newTestPersonService(t *testing.T) (*PersonService, *countingRecorder) {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rec := &countingRecorder{}
	return NewPersonService(repositories.NewPersonRepository(db), rec, logger.Discard()), rec
}

var john = models.PersonInput{Name: "John Doe", Email: "john@example.com", PhoneNumber: "0412345678"}

func strPtr(s string) *string { return &s }

func TestCreateThenGet(t *testing.T) {
	svc, _ := newTestPersonService(t)
	ctx := context.Background()

	created, err := svc.CreatePerson(ctx, john)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	got, err := svc.GetPerson(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, john.Name, got.Name)
	assert.Equal(t, john.Email, got.Email)
	assert.Equal(t, john.PhoneNumber, got.PhoneNumber)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, created.UpdatedAt.Equal(got.UpdatedAt))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, rec := newTestPersonService(t)

	_, err := svc.CreatePerson(context.Background(), models.PersonInput{Name: "J", Email: "bad", PhoneNumber: "123"})

	var vErr *models.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Fields, 3)
	assert.Equal(t, 1, rec.calls["create/validation"])
}

func TestCreateStripsMarkupAndWhitespace(t *testing.T) {
	svc, _ := newTestPersonService(t)

	created, err := svc.CreatePerson(context.Background(), models.PersonInput{
		Name:        "  <b>Tom</b> & Jerry ",
		Email:       " tom@example.com ",
		PhoneNumber: "0412345678",
	})
	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry", created.Name)
	assert.Equal(t, "tom@example.com", created.Email)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "encoded markup", input: "&lt;b&gt;Tom&lt;/b&gt; Tinker", want: "Tom Tinker"},
		{name: "double encoded markup", input: "&amp;lt;i&amp;gt;Tim", want: "Tim"},
		{name: "whitespace left by a tag", input: "R&D <Team>", want: "R&D"},
		{name: "plain entity text", input: "Ben &amp; Holly", want: "Ben & Holly"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := svc.CreatePerson(context.Background(), models.PersonInput{
				Name:        tt.input,
				Email:       fmt.Sprintf("markup%d@example.com", i),
				PhoneNumber: "0412345678",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, created.Name)
			assert.NotContains(t, created.Name, "<")
		})
	}

	t.Run("stripped name is validated", func(t *testing.T) {
		_, err := svc.CreatePerson(context.Background(), models.PersonInput{
			Name:        "<i> </i>A",
			Email:       "short@example.com",
			PhoneNumber: "0412345678",
		})
		assert.Equal(t, models.KindValidation, models.KindOf(err))
		assert.Contains(t, err.Error(), "Name must be at least 2 characters")
	})
}

func TestDuplicateEmailLeavesFirstRecord(t *testing.T) {
	svc, rec := newTestPersonService(t)
	ctx := context.Background()

	first, err := svc.CreatePerson(ctx, john)
	require.NoError(t, err)

	_, err = svc.CreatePerson(ctx, models.PersonInput{Name: "Other John", Email: john.Email, PhoneNumber: "0499999999"})
	assert.ErrorIs(t, err, models.ErrEmailTaken)
	assert.Equal(t, models.KindConflict, models.KindOf(err))
	assert.Equal(t, 1, rec.calls["create/conflict"])

	got, err := svc.GetPerson(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", got.Name)
	assert.Equal(t, "0412345678", got.PhoneNumber)
}

func TestEmptyPatchOnlyRefreshesUpdatedAt(t *testing.T) {
	svc, _ := newTestPersonService(t)
	ctx := context.Background()

	created, err := svc.CreatePerson(ctx, john)
	require.NoError(t, err)

	updated, err := svc.UpdatePerson(ctx, created.ID, models.PersonPatch{})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.PhoneNumber, updated.PhoneNumber)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestPartialUpdate(t *testing.T) {
	svc, _ := newTestPersonService(t)
	ctx := context.Background()

	created, err := svc.CreatePerson(ctx, john)
	require.NoError(t, err)
	_, err = svc.CreatePerson(ctx, models.PersonInput{Name: "Jane Smith", Email: "jane@example.com", PhoneNumber: "0423456789"})
	require.NoError(t, err)

	t.Run("valid field is merged", func(t *testing.T) {
		updated, err := svc.UpdatePerson(ctx, created.ID, models.PersonPatch{PhoneNumber: strPtr("0498765432")})
		require.NoError(t, err)
		assert.Equal(t, "0498765432", updated.PhoneNumber)
		assert.Equal(t, john.Name, updated.Name)
	})

	t.Run("invalid supplied field is rejected", func(t *testing.T) {
		_, err := svc.UpdatePerson(ctx, created.ID, models.PersonPatch{Name: strPtr("J")})
		assert.Equal(t, models.KindValidation, models.KindOf(err))
	})

	t.Run("email conflict", func(t *testing.T) {
		_, err := svc.UpdatePerson(ctx, created.ID, models.PersonPatch{Email: strPtr("jane@example.com")})
		assert.ErrorIs(t, err, models.ErrEmailTaken)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.UpdatePerson(ctx, uuid.NewString(), models.PersonPatch{Name: strPtr("Valid Name")})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	svc, _ := newTestPersonService(t)
	ctx := context.Background()

	created, err := svc.CreatePerson(ctx, john)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePerson(ctx, created.ID))

	got, err := svc.GetPerson(ctx, created.ID)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, svc.DeletePerson(ctx, created.ID), models.ErrNotFound)
	assert.ErrorIs(t, svc.DeletePerson(ctx, ""), models.ErrNotFound)
}

func TestSearchPeople(t *testing.T) {
	svc, _ := newTestPersonService(t)
	ctx := context.Background()

	_, err := svc.CreatePerson(ctx, john)
	require.NoError(t, err)
	_, err = svc.CreatePerson(ctx, models.PersonInput{Name: "Jane Smith", Email: "jane@example.com", PhoneNumber: "0423456789"})
	require.NoError(t, err)

	people, err := svc.SearchPeople(ctx, "smi")
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Jane Smith", people[0].Name)

	people, err = svc.SearchPeople(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestSearchPeopleIgnoresCaseOfAccentedNames(t *testing.T) {
	svc, _ := newTestPersonService(t)
	ctx := context.Background()

	_, err := svc.CreatePerson(ctx, models.PersonInput{Name: "Émile Zola", Email: "emile@example.com", PhoneNumber: "0412345678"})
	require.NoError(t, err)
	_, err = svc.CreatePerson(ctx, models.PersonInput{Name: "Ärne Öberg", Email: "arne@example.com", PhoneNumber: "0423456789"})
	require.NoError(t, err)

	for query, want := range map[string]string{
		"émile": "Émile Zola",
		"ÉMILE": "Émile Zola",
		"öBERG": "Ärne Öberg",
		"ärne":  "Ärne Öberg",
	} {
		people, err := svc.SearchPeople(ctx, query)
		require.NoError(t, err)
		require.Len(t, people, 1, query)
		assert.Equal(t, want, people[0].Name)
	}
}

func TestExampleScenario(t *testing.T) {
	svc, _ := newTestPersonService(t)
	ctx := context.Background()

	created, err := svc.CreatePerson(ctx, john)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = svc.CreatePerson(ctx, john)
	assert.ErrorIs(t, err, models.ErrEmailTaken)

	people, err := svc.ListPeople(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 1)

	require.NoError(t, svc.DeletePerson(ctx, created.ID))

	people, err = svc.ListPeople(ctx)
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestDeleteAllPeople(t *testing.T) {
	svc, _ := newTestPersonService(t)
	ctx := context.Background()

	_, err := svc.CreatePerson(ctx, john)
	require.NoError(t, err)

	n, err := svc.DeleteAllPeople(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, svc.Ping(ctx))
}
