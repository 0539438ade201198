package reconcile

import "fmt"

// RecordResult is the per-record outcome of a reconciliation pass. One
// entry exists for every source record, in source order, regardless of
// how that record fared.
type RecordResult struct {
	Key    string        `json:"key"`
	Action Action        `json:"action"`
	Status OutcomeStatus `json:"status"`
	ItemID string        `json:"itemId,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// Result is the outcome report of one reconciliation pass.
type Result struct {
	Created int  `json:"created"`
	Updated int  `json:"updated"`
	Failed  int  `json:"failed"`
	Skipped int  `json:"skipped"`
	DryRun  bool `json:"dryRun,omitempty"`

	Records []RecordResult `json:"records"`
}

// tally recomputes the counters from the record outcomes.
func (r *Result) tally() {
	r.Created, r.Updated, r.Failed, r.Skipped = 0, 0, 0, 0
	for i := range r.Records {
		rec := &r.Records[i]
		switch rec.Status {
		case StatusSkipped:
			r.Skipped++
		case StatusFailed:
			r.Failed++
		case StatusSucceeded, StatusPlanned:
			switch rec.Action {
			case ActionCreate:
				r.Created++
			case ActionUpdate:
				r.Updated++
			}
		}
	}
}

// HasFailures reports whether any record failed. Skipped records are
// not failures.
func (r *Result) HasFailures() bool {
	return r.Failed > 0
}

// Summary returns a one-line human-readable tally.
func (r *Result) Summary() string {
	s := fmt.Sprintf("%d created, %d updated, %d failed, %d skipped",
		r.Created, r.Updated, r.Failed, r.Skipped)
	if r.DryRun {
		return s + " (dry run)"
	}
	return s
}
