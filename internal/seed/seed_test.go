package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/alimgiray/peoplebase/internal/repositories"
	"github.com/alimgiray/peoplebase/internal/services"
	"github.com/alimgiray/peoplebase/pkg/config"
	"github.com/alimgiray/peoplebase/pkg/database"
	"github.com/alimgiray/peoplebase/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *services.PersonService {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return services.NewPersonService(repositories.NewPersonRepository(db), nil, logger.Discard())
}

func TestDefault(t *testing.T) {
	people, err := Default()
	require.NoError(t, err)
	require.Len(t, people, 10)
	assert.Equal(t, models.PersonInput{Name: "John Doe", Email: "john@example.com", PhoneNumber: "0412345678"}, people[0])
	assert.Equal(t, "0401234567", people[9].PhoneNumber)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("people: [oops"))
	assert.Error(t, err)

	_, err = Parse([]byte("people: []"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.yaml")
	require.NoError(t, os.WriteFile(path, []byte("people:\n  - name: Zoe Park\n    email: zoe@example.com\n    phoneNumber: \"0411111111\"\n"), 0o600))

	people, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Zoe Park", people[0].Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	people, err := Default()
	require.NoError(t, err)

	report, err := Run(ctx, svc, people, true)
	require.NoError(t, err)
	assert.Len(t, report.Created, 10)
	assert.Empty(t, report.Failed)

	t.Run("without reset duplicates are skipped", func(t *testing.T) {
		report, err := Run(ctx, svc, people[:2], false)
		require.NoError(t, err)
		assert.Zero(t, report.Deleted)
		assert.Empty(t, report.Created)
		require.Len(t, report.Failed, 2)
		assert.ErrorIs(t, report.Failed[0].Err, models.ErrEmailTaken)
	})

	t.Run("reset replaces everything", func(t *testing.T) {
		report, err := Run(ctx, svc, people[:3], true)
		require.NoError(t, err)
		assert.Equal(t, int64(10), report.Deleted)
		assert.Len(t, report.Created, 3)

		all, err := svc.ListPeople(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("invalid people are reported", func(t *testing.T) {
		report, err := Run(ctx, svc, []models.PersonInput{{Name: "X", Email: "x", PhoneNumber: "1"}}, false)
		require.NoError(t, err)
		require.Len(t, report.Failed, 1)
		assert.Equal(t, models.KindValidation, models.KindOf(report.Failed[0].Err))
	})
}
