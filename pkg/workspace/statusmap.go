package workspace

// StatusRule maps one workspace status to the set of tracker statuses it
// absorbs. Rules are evaluated in configuration order.
type StatusRule struct {
	Status  string   `yaml:"status"`
	Tracker []string `yaml:"tracker"`
}

// StatusMapping is the ordered many-to-one table from tracker status
// strings to workspace status names. It is configuration: built once,
// never mutated during a run, so lookups are deterministic and safe to
// share across workers.
type StatusMapping []StatusRule

// MapStatus returns the workspace status name for a tracker status. The
// first rule whose tracker set contains the input wins (case-sensitive).
// Unmapped statuses pass through unchanged so that resolution against the
// workspace's own status table fails explicitly downstream instead of the
// update being dropped silently.
func (m StatusMapping) MapStatus(trackerStatus string) string {
	for _, rule := range m {
		for _, variant := range rule.Tracker {
			if variant == trackerStatus {
				return rule.Status
			}
		}
	}
	return trackerStatus
}
