package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testMapping() StatusMapping {
	return StatusMapping{
		{Status: "Draft", Tracker: []string{"Open", "To Do", "Backlog"}},
		{Status: "In Progress", Tracker: []string{"In Progress", "In Review"}},
		{Status: "Done", Tracker: []string{"Done", "Closed", "Resolved"}},
	}
}

func TestMapStatus(t *testing.T) {
	m := testMapping()

	assert.Equal(t, "Draft", m.MapStatus("Open"))
	assert.Equal(t, "In Progress", m.MapStatus("In Review"))
	assert.Equal(t, "Done", m.MapStatus("Resolved"))
}

func TestMapStatusPassThrough(t *testing.T) {
	m := testMapping()

	// Unmapped statuses pass through unchanged so the failure surfaces
	// downstream at status resolution, visibly.
	assert.Equal(t, "Blocked", m.MapStatus("Blocked"))
	assert.Equal(t, "", m.MapStatus(""))
}

func TestMapStatusCaseSensitive(t *testing.T) {
	m := testMapping()
	assert.Equal(t, "open", m.MapStatus("open"))
}

func TestMapStatusFirstRuleWins(t *testing.T) {
	m := StatusMapping{
		{Status: "First", Tracker: []string{"Shared"}},
		{Status: "Second", Tracker: []string{"Shared"}},
	}
	assert.Equal(t, "First", m.MapStatus("Shared"))
}

func TestMapStatusDeterministic(t *testing.T) {
	m := testMapping()
	for i := 0; i < 100; i++ {
		assert.Equal(t, "In Progress", m.MapStatus("In Progress"))
	}
}
