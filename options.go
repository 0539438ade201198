package mirrorsync

import (
	"github.com/agentstation/mirrorsync/internal/snapshot"
)

// Option is a function that configures a Syncer instance.
type Option func(*syncer) error

// WithTrackerSource injects the tracker source, replacing the API
// client built from configuration.
func WithTrackerSource(src TrackerSource) Option {
	return func(s *syncer) error {
		s.tracker = src
		return nil
	}
}

// WithWorkspaceSource injects the workspace source, replacing the API
// client built from configuration.
func WithWorkspaceSource(src WorkspaceSource) Option {
	return func(s *syncer) error {
		s.workspace = src
		return nil
	}
}

// WithDryRun plans every pass without submitting any mutation.
func WithDryRun(enabled bool) Option {
	return func(s *syncer) error {
		s.dryRun = enabled
		return nil
	}
}

// WithConcurrency overrides the configured write concurrency.
func WithConcurrency(n int) Option {
	return func(s *syncer) error {
		if n > 0 {
			s.concurrency = n
		}
		return nil
	}
}

// WithSnapshotStore injects the snapshot store.
func WithSnapshotStore(store *snapshot.Store) Option {
	return func(s *syncer) error {
		s.snapshots = store
		return nil
	}
}

// WithoutSnapshots disables snapshot persistence entirely.
func WithoutSnapshots() Option {
	return func(s *syncer) error {
		s.snapshotsOff = true
		return nil
	}
}
