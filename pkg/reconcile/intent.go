package reconcile

import (
	"github.com/agentstation/mirrorsync/pkg/workspace"
)

// Action is the decision taken for one source record.
type Action string

// Actions a reconciliation pass can take per record.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// OutcomeStatus is the terminal state of one record's processing.
type OutcomeStatus string

// Outcome statuses. Planned is the dry-run terminal state: the intent was
// built but deliberately not submitted.
const (
	StatusPending   OutcomeStatus = "pending"
	StatusPlanned   OutcomeStatus = "planned"
	StatusSkipped   OutcomeStatus = "skipped"
	StatusSucceeded OutcomeStatus = "succeeded"
	StatusFailed    OutcomeStatus = "failed"
)

// Intent is the ephemeral create-or-update decision for one source
// record, built during planning and executed (or discarded, on dry runs)
// within the same pass. The slot index ties the intent back to its
// record's outcome entry in the run result.
type Intent struct {
	Key    string
	Action Action
	ItemID string // update target, empty for creates
	Create *workspace.CreatePayload
	Patch  []workspace.PatchOp

	slot int
}
