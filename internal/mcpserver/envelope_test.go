package mcpserver

import (
	"fmt"
	"testing"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeJSON(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
		want string
	}{
		{
			name: "deleted",
			env:  Success(nil, MsgDeleted),
			want: "{\n  \"success\": true,\n  \"message\": \"Person deleted successfully\"\n}",
		},
		{
			name: "empty list",
			env:  List(nil),
			want: "{\n  \"success\": true,\n  \"data\": [],\n  \"count\": 0\n}",
		},
		{
			name: "not found",
			env:  FromError(models.ErrNotFound),
			want: "{\n  \"success\": false,\n  \"error\": \"Person not found\"\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.env.JSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromErrorKinds(t *testing.T) {
	assert.Equal(t, models.KindNotFound, FromError(fmt.Errorf("lookup: %w", models.ErrNotFound)).Kind())
	assert.Equal(t, models.KindConflict, FromError(models.ErrEmailTaken).Kind())

	internal := FromError(fmt.Errorf("boom"))
	assert.Equal(t, models.KindInternal, internal.Kind())
	assert.Equal(t, MsgInternalError, internal.Error)
	assert.Empty(t, Success("x", "").Kind())
}

func TestIsToolError(t *testing.T) {
	assert.False(t, Success("x", "").IsToolError())
	assert.True(t, FromError(models.ErrNotFound).IsToolError())
	assert.True(t, Failure(models.KindValidation, "Name is required").IsToolError())

	missing := Missing(models.ErrNotFound.Error())
	assert.False(t, missing.IsToolError())
	assert.False(t, missing.Success)
	assert.Equal(t, models.KindNotFound, missing.Kind())
}
