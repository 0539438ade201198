package mirrorsync

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mirrorsync/internal/config"
	"github.com/agentstation/mirrorsync/pkg/errors"
	"github.com/agentstation/mirrorsync/pkg/tracker"
	"github.com/agentstation/mirrorsync/pkg/workspace"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Tracker = config.Tracker{BaseURL: "https://tracker.example.com/rest/api/latest", Project: "PROJ", IssueType: "Epic"}
	cfg.Workspace = config.Workspace{BaseURL: "https://workspace.example.com/api", ID: "ws-123"}
	cfg.Fields = config.Fields{Key: "TRACKER-KEY", Team: config.Team{Name: "Team", Value: "Platform"}}
	cfg.StatusMapping = workspace.StatusMapping{
		{Status: "Draft", Tracker: []string{"Open", "To Do"}},
		{Status: "In Progress", Tracker: []string{"In Progress"}},
		{Status: "Done", Tracker: []string{"Done", "Closed"}},
	}
	cfg.Sync.DataDir = ""
	return cfg
}

func testSchema() *workspace.Schema {
	return workspace.NewSchema(
		[]workspace.Field{
			{ID: "fld-key", Name: "TRACKER-KEY", Kind: workspace.FieldKindText},
			{ID: "fld-team", Name: "Team", Kind: workspace.FieldKindSelect, Options: []workspace.Option{
				{ID: "opt-platform", Name: "Platform"},
			}},
		},
		[]workspace.Status{
			{ID: "st-draft", Name: "Draft", Default: true},
			{ID: "st-progress", Name: "In Progress"},
			{ID: "st-done", Name: "Done"},
		},
	)
}

type fakeTracker struct {
	issues []tracker.Issue
	err    error
}

func (f *fakeTracker) FetchIssues(_ context.Context) ([]tracker.Issue, error) {
	return f.issues, f.err
}

type fakeWorkspace struct {
	mu        sync.Mutex
	schema    *workspace.Schema
	schemaErr error
	items     []workspace.Item
	patched   map[string][]workspace.PatchOp
	created   []workspace.CreatePayload
	nextID    int
}

func newFakeWorkspace(schema *workspace.Schema) *fakeWorkspace {
	return &fakeWorkspace{
		schema:  schema,
		patched: make(map[string][]workspace.PatchOp),
	}
}

func (f *fakeWorkspace) FetchSchema(_ context.Context) (*workspace.Schema, error) {
	return f.schema, f.schemaErr
}

func (f *fakeWorkspace) SearchItems(_ context.Context) ([]workspace.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]workspace.Item, len(f.items))
	copy(items, f.items)
	return items, nil
}

func (f *fakeWorkspace) CreateItem(_ context.Context, payload workspace.CreatePayload) (*workspace.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	item := workspace.Item{
		ID:          fmt.Sprintf("item-%d", f.nextID),
		Name:        payload.Name,
		Description: payload.Description.Markdown,
		StatusID:    payload.StatusID,
		Fields:      payload.Fields,
	}
	f.items = append(f.items, item)
	f.created = append(f.created, payload)
	return &item, nil
}

func (f *fakeWorkspace) PatchItem(_ context.Context, itemID string, ops []workspace.PatchOp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patched[itemID] = ops
	return nil
}

func testIssues() []tracker.Issue {
	return []tracker.Issue{
		{
			Key:     "PROJ-1",
			URL:     "https://tracker.example.com/projects/PROJ/issues/PROJ-1",
			Summary: "Build the ingestion pipeline",
			Status:  &tracker.Status{Name: "In Progress"},
		},
		{
			Key:     "PROJ-2",
			URL:     "https://tracker.example.com/projects/PROJ/issues/PROJ-2",
			Summary: "Harden the API surface",
			Status:  &tracker.Status{Name: "Open"},
		},
	}
}

func newTestSyncer(t *testing.T, ws *fakeWorkspace, extra ...Option) Syncer {
	t.Helper()
	opts := append([]Option{
		WithTrackerSource(&fakeTracker{issues: testIssues()}),
		WithWorkspaceSource(ws),
		WithoutSnapshots(),
	}, extra...)
	s, err := New(testConfig(), opts...)
	require.NoError(t, err)
	return s
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.True(t, errors.IsPrecondition(err))

	cfg := testConfig()
	cfg.Workspace.ID = ""
	_, err = New(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsPrecondition(err))
}

func TestSyncCreatesThenUpdates(t *testing.T) {
	ws := newFakeWorkspace(testSchema())
	s := newTestSyncer(t, ws)

	first, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, first.Updated)
	assert.Equal(t, 0, first.Failed)

	require.Len(t, ws.created, 2)
	payload := ws.created[0]
	assert.Equal(t, "st-progress", payload.StatusID)
	assert.Equal(t, workspace.FieldValue{Text: "PROJ-1"}, payload.Fields["fld-key"])
	assert.Equal(t, workspace.FieldValue{Selection: []string{"opt-platform"}}, payload.Fields["fld-team"])
	key, ok := workspace.ParseMarker(payload.Description.Markdown)
	require.True(t, ok)
	assert.Equal(t, "PROJ-1", key)

	// An unchanged source converges on the second pass: every record
	// re-matches its item and is patched, never duplicated.
	second, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Len(t, ws.created, 2)
	assert.Len(t, ws.patched, 2)
}

func TestSyncSchemaFetchIsFatal(t *testing.T) {
	ws := newFakeWorkspace(nil)
	ws.schemaErr = errors.NewAPIError("workspace", 503, "maintenance")
	s := newTestSyncer(t, ws)

	result, err := s.Sync(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, errors.ErrSystemUnavailable)
}

func TestSyncDryRun(t *testing.T) {
	ws := newFakeWorkspace(testSchema())
	s := newTestSyncer(t, ws, WithDryRun(true))

	result, err := s.Sync(context.Background())
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.Created)
	assert.Empty(t, ws.created, "dry runs never write")
	assert.Empty(t, ws.patched)
}

func TestSyncWritesSnapshots(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Sync.DataDir = dir

	ws := newFakeWorkspace(testSchema())
	s, err := New(cfg,
		WithTrackerSource(&fakeTracker{issues: testIssues()}),
		WithWorkspaceSource(ws),
	)
	require.NoError(t, err)

	_, err = s.Sync(context.Background())
	require.NoError(t, err)

	for _, kind := range []string{"schema", "issues", "items", "result"} {
		assert.FileExists(t, filepath.Join(dir, kind, kind+"-latest.json"))
	}
}

func TestSchemaPassthrough(t *testing.T) {
	ws := newFakeWorkspace(testSchema())
	s := newTestSyncer(t, ws)

	schema, err := s.Schema(context.Background())
	require.NoError(t, err)
	id, err := schema.FieldID("TRACKER-KEY")
	require.NoError(t, err)
	assert.Equal(t, "fld-key", id)
}
