// Package reconcile decides and applies the mutations that converge a
// mirror workspace onto its source-of-truth tracker. Planning is pure:
// it turns fetched issues, fetched items and the workspace schema into
// create and update intents without touching the network. Running a plan
// submits those intents through a Writer with bounded concurrency, and a
// single record's failure never aborts the pass.
package reconcile

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/mirrorsync/pkg/errors"
	"github.com/agentstation/mirrorsync/pkg/logging"
	"github.com/agentstation/mirrorsync/pkg/tracker"
	"github.com/agentstation/mirrorsync/pkg/workspace"
)

// DefaultConcurrency is the number of write operations in flight at once
// unless configured otherwise.
const DefaultConcurrency = 4

// Writer submits mutations to the mirror workspace. The reconciler never
// talks to the network itself.
type Writer interface {
	CreateItem(ctx context.Context, payload workspace.CreatePayload) (*workspace.Item, error)
	PatchItem(ctx context.Context, itemID string, ops []workspace.PatchOp) error
}

// Reconciler plans and runs reconciliation passes against one workspace
// schema. It is safe for reuse across passes; all per-pass state lives in
// the Plan and Result.
type Reconciler struct {
	schema      *workspace.Schema
	mapping     workspace.StatusMapping
	fields      workspace.FieldConfig
	teamValue   string
	concurrency int
	dryRun      bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithStatusMapping sets the ordered tracker-to-workspace status rules.
func WithStatusMapping(m workspace.StatusMapping) Option {
	return func(r *Reconciler) { r.mapping = m }
}

// WithFieldConfig names the managed workspace fields.
func WithFieldConfig(cfg workspace.FieldConfig) Option {
	return func(r *Reconciler) { r.fields = cfg }
}

// WithTeamValue sets the team option name applied to every mirrored item.
func WithTeamValue(v string) Option {
	return func(r *Reconciler) { r.teamValue = v }
}

// WithConcurrency bounds the number of concurrent write operations.
func WithConcurrency(n int) Option {
	return func(r *Reconciler) { r.concurrency = n }
}

// WithDryRun plans intents but never submits them.
func WithDryRun(dryRun bool) Option {
	return func(r *Reconciler) { r.dryRun = dryRun }
}

// New creates a Reconciler for the given workspace schema.
func New(schema *workspace.Schema, opts ...Option) (*Reconciler, error) {
	if schema == nil {
		return nil, errors.NewConfigError("reconcile", "workspace schema is required", nil)
	}

	r := &Reconciler{
		schema:      schema,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.concurrency < 1 {
		r.concurrency = 1
	}
	return r, nil
}

// Plan holds the intents of one pass plus the outcome slot for every
// source record. Records that produced no intent (validation or field
// resolution failures) already carry their terminal status.
type Plan struct {
	Intents []Intent
	Records []RecordResult
}

// Plan matches every source issue against the fetched mirror items and
// decides what, if anything, to do about it. Items are matched by
// external key, recovered from the dedicated key field first and the
// description marker second. Planning makes no network calls.
func (r *Reconciler) Plan(issues []tracker.Issue, items []workspace.Item) *Plan {
	keyFieldID := r.keyFieldID()
	index := indexItems(items, keyFieldID)

	plan := &Plan{Records: make([]RecordResult, len(issues))}
	for i := range issues {
		issue := &issues[i]
		rec := &plan.Records[i]
		rec.Key = issue.Key
		rec.Status = StatusPending

		if violations := issue.Validate(); len(violations) > 0 {
			skipRecord(rec, violations)
			continue
		}

		candidate := workspace.NewCandidate(issue, r.mapping, r.teamValue)
		if violations := candidate.Validate(); len(violations) > 0 {
			skipRecord(rec, violations)
			continue
		}

		existing := index[candidate.Key]
		if existing != nil {
			rec.Action = ActionUpdate
			rec.ItemID = existing.ID
		} else {
			rec.Action = ActionCreate
		}

		resolved, err := workspace.ResolveFields(&candidate, r.schema, r.fields)
		if err != nil {
			rec.Status = StatusFailed
			rec.Reason = err.Error()
			logging.Error().
				Err(err).
				Str("key", rec.Key).
				Msg("Field resolution failed for record")
			continue
		}

		intent := Intent{Key: candidate.Key, Action: rec.Action, slot: i}
		if existing != nil {
			intent.ItemID = existing.ID
			intent.Patch = workspace.BuildPatchOps(&candidate, resolved)
		} else {
			payload := workspace.BuildCreatePayload(&candidate, resolved)
			intent.Create = &payload
		}
		plan.Intents = append(plan.Intents, intent)
	}

	logging.Debug().
		Int("issues", len(issues)).
		Int("items", len(items)).
		Int("intents", len(plan.Intents)).
		Msg("Reconciliation plan built")

	return plan
}

// Run executes a plan through the writer with bounded concurrency.
// Individual operation failures are recorded against their record and do
// not stop the pass; only context cancellation stops dispatching further
// operations. In dry-run mode intents are marked planned and the writer
// is never called.
func (r *Reconciler) Run(ctx context.Context, plan *Plan, writer Writer) (*Result, error) {
	result := &Result{Records: plan.Records, DryRun: r.dryRun}

	if r.dryRun {
		for i := range plan.Intents {
			result.Records[plan.Intents[i].slot].Status = StatusPlanned
		}
		result.tally()
		return result, nil
	}

	if writer == nil {
		return nil, errors.NewConfigError("reconcile", "writer is required outside dry-run mode", nil)
	}

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i := range plan.Intents {
		intent := &plan.Intents[i]
		if ctx.Err() != nil {
			rec := &result.Records[intent.slot]
			rec.Status = StatusFailed
			rec.Reason = "canceled before dispatch"
			continue
		}

		g.Go(func() error {
			r.apply(ctx, intent, writer, &result.Records[intent.slot])
			return nil
		})
	}

	_ = g.Wait()
	result.tally()
	return result, ctx.Err()
}

// apply submits one intent and writes the outcome into the record slot.
// Slots are disjoint per goroutine, so no locking is needed.
func (r *Reconciler) apply(ctx context.Context, intent *Intent, writer Writer, rec *RecordResult) {
	log := logging.Ctx(logging.WithKey(ctx, intent.Key))

	switch intent.Action {
	case ActionCreate:
		item, err := writer.CreateItem(ctx, *intent.Create)
		if err != nil {
			fail(rec, errors.WrapSync(intent.Key, "create", err))
			return
		}
		if item != nil {
			rec.ItemID = item.ID
		}
		rec.Status = StatusSucceeded
		log.Info().Str("item", rec.ItemID).Msg("Created mirror item")

	case ActionUpdate:
		if err := writer.PatchItem(ctx, intent.ItemID, intent.Patch); err != nil {
			fail(rec, errors.WrapSync(intent.Key, "update", err))
			return
		}
		rec.Status = StatusSucceeded
		log.Info().Str("item", intent.ItemID).Int("ops", len(intent.Patch)).Msg("Updated mirror item")
	}
}

func fail(rec *RecordResult, err error) {
	rec.Status = StatusFailed
	rec.Reason = err.Error()
	logging.Error().
		Err(err).
		Str("key", rec.Key).
		Str("action", string(rec.Action)).
		Msg("Reconcile operation failed")
}

func skipRecord(rec *RecordResult, violations []error) {
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, v.Error())
	}
	rec.Action = ActionSkip
	rec.Status = StatusSkipped
	rec.Reason = strings.Join(msgs, "; ")
	logging.Warn().
		Str("key", rec.Key).
		Str("reason", rec.Reason).
		Msg("Skipping invalid source record")
}

// keyFieldID resolves the configured key field name once per plan. A
// missing field degrades matching to the description marker.
func (r *Reconciler) keyFieldID() string {
	if r.fields.KeyField == "" {
		return ""
	}
	id, err := r.schema.FieldID(r.fields.KeyField)
	if err != nil {
		return ""
	}
	return id
}

// indexItems builds the external-key index over the fetched mirror
// items. Items with no recoverable key are left out and never updated.
// When two items claim the same key the first fetched one wins and the
// duplicate is reported, not touched.
func indexItems(items []workspace.Item, keyFieldID string) map[string]*workspace.Item {
	index := make(map[string]*workspace.Item, len(items))
	for i := range items {
		item := &items[i]
		key, ok := item.ExternalKey(keyFieldID)
		if !ok {
			continue
		}
		if first, dup := index[key]; dup {
			logging.Warn().
				Str("key", key).
				Str("item", item.ID).
				Str("keptItem", first.ID).
				Msg("Multiple mirror items claim the same key")
			continue
		}
		index[key] = item
	}
	return index
}
