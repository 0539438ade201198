package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mirrorsync/pkg/errors"
)

func testSchema() *Schema {
	return NewSchema(
		[]Field{
			{ID: "fld-key", Name: "TRACKER-KEY", Kind: FieldKindText},
			{ID: "fld-team", Name: "Team", Kind: FieldKindSelect, Options: []Option{
				{ID: "opt-platform", Name: "Platform"},
				{ID: "opt-apps", Name: "Apps"},
			}},
			{ID: "fld-notes", Name: "Notes", Kind: FieldKindText},
		},
		[]Status{
			{ID: "st-draft", Name: "Draft", Default: true},
			{ID: "st-progress", Name: "In Progress"},
			{ID: "st-done", Name: "Done"},
		},
	)
}

func TestSchemaFieldID(t *testing.T) {
	s := testSchema()

	id, err := s.FieldID("TRACKER-KEY")
	require.NoError(t, err)
	assert.Equal(t, "fld-key", id)

	_, err = s.FieldID("tracker-key")
	assert.True(t, errors.IsNotFound(err), "lookups must be case-sensitive")

	_, err = s.FieldID("Nonexistent")
	assert.True(t, errors.IsNotFound(err))
}

func TestSchemaOptionID(t *testing.T) {
	s := testSchema()

	id, err := s.OptionID("fld-team", "Platform")
	require.NoError(t, err)
	assert.Equal(t, "opt-platform", id)

	_, err = s.OptionID("fld-team", "platform")
	assert.True(t, errors.IsNotFound(err), "option lookups must be case-sensitive")

	_, err = s.OptionID("fld-missing", "Platform")
	assert.True(t, errors.IsNotFound(err))

	_, err = s.OptionID("fld-notes", "Platform")
	assert.True(t, errors.IsValidationError(err), "text fields have no options")
}

func TestSchemaStatusID(t *testing.T) {
	s := testSchema()

	id, err := s.StatusID("In Progress")
	require.NoError(t, err)
	assert.Equal(t, "st-progress", id)

	_, err = s.StatusID("Blocked")
	assert.True(t, errors.IsNotFound(err))
}

func TestSchemaFieldName(t *testing.T) {
	s := testSchema()

	name, err := s.FieldName("fld-team")
	require.NoError(t, err)
	assert.Equal(t, "Team", name)

	_, err = s.FieldName("fld-unknown")
	assert.True(t, errors.IsNotFound(err))
}
