// Package mirrorsync reconciles issues from a source-of-truth tracker
// into a mirror workspace. Each Sync call is one pass: fetch the
// workspace schema, enumerate both sides, plan create/update intents per
// issue and apply them with bounded concurrency. The tracker always
// wins; manual edits to mirrored items are overwritten.
package mirrorsync

import (
	"context"

	"github.com/agentstation/mirrorsync/internal/config"
	"github.com/agentstation/mirrorsync/internal/snapshot"
	trackersrc "github.com/agentstation/mirrorsync/internal/sources/tracker"
	workspacesrc "github.com/agentstation/mirrorsync/internal/sources/workspace"
	"github.com/agentstation/mirrorsync/pkg/errors"
	"github.com/agentstation/mirrorsync/pkg/reconcile"
	"github.com/agentstation/mirrorsync/pkg/tracker"
	"github.com/agentstation/mirrorsync/pkg/workspace"
)

// TrackerSource fetches issues from the source of truth.
type TrackerSource interface {
	FetchIssues(ctx context.Context) ([]tracker.Issue, error)
}

// WorkspaceSource reads and mutates the mirror workspace.
type WorkspaceSource interface {
	FetchSchema(ctx context.Context) (*workspace.Schema, error)
	SearchItems(ctx context.Context) ([]workspace.Item, error)
	reconcile.Writer
}

// Syncer runs reconciliation passes.
type Syncer interface {
	// Sync runs one reconciliation pass and reports per-record outcomes.
	Sync(ctx context.Context) (*reconcile.Result, error)

	// Schema fetches the workspace's current field and status
	// definitions.
	Schema(ctx context.Context) (*workspace.Schema, error)
}

// syncer is the internal implementation of the Syncer interface.
type syncer struct {
	cfg          *config.Config
	tracker      TrackerSource
	workspace    WorkspaceSource
	snapshots    *snapshot.Store
	snapshotsOff bool
	concurrency  int
	dryRun       bool
}

// New creates a Syncer from a validated configuration. Unless sources
// are injected, API clients are built from the credential environment
// variables.
func New(cfg *config.Config, opts ...Option) (Syncer, error) {
	if cfg == nil {
		return nil, errors.NewConfigError("mirrorsync", "configuration is required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &syncer{
		cfg:         cfg,
		concurrency: cfg.Sync.Concurrency,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.tracker == nil || s.workspace == nil {
		creds, err := config.LoadCredentials()
		if err != nil {
			return nil, err
		}
		if s.tracker == nil {
			s.tracker = trackersrc.NewClient(cfg.Tracker, creds.TrackerToken)
		}
		if s.workspace == nil {
			s.workspace = workspacesrc.NewClient(cfg.Workspace, creds.WorkspaceAPIKey)
		}
	}

	if s.snapshots == nil && !s.snapshotsOff && cfg.Sync.DataDir != "" {
		s.snapshots = snapshot.New(cfg.Sync.DataDir)
	}

	return s, nil
}

// Schema fetches the workspace schema without running a pass.
func (s *syncer) Schema(ctx context.Context) (*workspace.Schema, error) {
	return s.workspace.FetchSchema(ctx)
}
