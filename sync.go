package mirrorsync

import (
	"context"

	"github.com/agentstation/mirrorsync/pkg/logging"
	"github.com/agentstation/mirrorsync/pkg/reconcile"
	"github.com/agentstation/mirrorsync/pkg/workspace"
)

// Sync runs one reconciliation pass. Schema fetch and the enumeration of
// either side are fatal: without a complete picture of both systems the
// pass cannot tell a new record from a missing fetch. Everything after
// that is per-record; see the result for individual outcomes.
func (s *syncer) Sync(ctx context.Context) (*reconcile.Result, error) {
	schema, err := s.workspace.FetchSchema(ctx)
	if err != nil {
		return nil, err
	}
	s.snapshot("schema", schemaSnapshot{Fields: schema.Fields(), Statuses: schema.Statuses()})

	issues, err := s.tracker.FetchIssues(ctx)
	if err != nil {
		return nil, err
	}
	s.snapshot("issues", issues)

	items, err := s.workspace.SearchItems(ctx)
	if err != nil {
		return nil, err
	}
	s.snapshot("items", items)

	r, err := reconcile.New(schema,
		reconcile.WithStatusMapping(s.cfg.StatusMapping),
		reconcile.WithFieldConfig(s.cfg.FieldConfig()),
		reconcile.WithTeamValue(s.cfg.Fields.Team.Value),
		reconcile.WithConcurrency(s.concurrency),
		reconcile.WithDryRun(s.dryRun),
	)
	if err != nil {
		return nil, err
	}

	plan := r.Plan(issues, items)
	result, runErr := r.Run(ctx, plan, s.workspace)
	if result != nil {
		s.snapshot("result", result)
		logging.Info().
			Int("created", result.Created).
			Int("updated", result.Updated).
			Int("failed", result.Failed).
			Int("skipped", result.Skipped).
			Bool("dryRun", result.DryRun).
			Msg("Reconciliation pass finished")
	}
	return result, runErr
}

// schemaSnapshot is the serializable shape of a fetched schema.
type schemaSnapshot struct {
	Fields   []workspace.Field  `json:"fields"`
	Statuses []workspace.Status `json:"statuses"`
}

// snapshot persists fetched state for debugging. Failures are logged and
// otherwise ignored; snapshots never fail a pass.
func (s *syncer) snapshot(kind string, v any) {
	if s.snapshots == nil {
		return
	}
	if _, err := s.snapshots.Save(kind, v); err != nil {
		logging.Warn().Err(err).Str("kind", kind).Msg("Snapshot failed")
	}
}
