package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type failingLister struct{}

func (failingLister) ListPeople(context.Context) ([]*models.Person, error) {
	return nil, errors.New("database is down")
}

func TestWriteXLSX(t *testing.T) {
	svc, _ := newTestPersonService(t)
	ctx := context.Background()

	_, err := svc.CreatePerson(ctx, john)
	require.NoError(t, err)
	_, err = svc.CreatePerson(ctx, models.PersonInput{Name: "Alice Johnson", Email: "alice@example.com", PhoneNumber: "0434567890"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewExportService(svc).WriteXLSX(ctx, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Name", "Email", "Phone Number", "Created At", "Updated At"}, rows[0])
	assert.Equal(t, "Alice Johnson", rows[1][1])
	assert.Equal(t, "John Doe", rows[2][1])
	assert.Equal(t, "0412345678", rows[2][3])
}

func TestWriteXLSXPropagatesListError(t *testing.T) {
	var buf bytes.Buffer
	err := NewExportService(failingLister{}).WriteXLSX(context.Background(), &buf)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
