package workspace

import (
	"strings"

	"github.com/agentstation/mirrorsync/pkg/errors"
	"github.com/agentstation/mirrorsync/pkg/tracker"
)

// DefaultColor is the color assigned to items created by mirrorsync.
const DefaultColor = "blue"

// Candidate is what one mirror item should look like after this pass:
// the pure transformation of a tracker issue, before any field or status
// ids are resolved. It is ephemeral, derived once per issue per run.
type Candidate struct {
	Key         string // external key, copied from the issue
	Name        string // item title, copied from the issue summary
	Description string // rendered markdown, marker line included
	StatusName  string // workspace status name after status mapping
	TeamValue   string // configured team option name, empty if unset
	Color       string
}

// NewCandidate builds a candidate item from a tracker issue. The status
// mapping is applied here; unmapped statuses pass through unchanged and
// surface later as a status resolution failure for this record only.
func NewCandidate(issue *tracker.Issue, mapping StatusMapping, teamValue string) Candidate {
	return Candidate{
		Key:         issue.Key,
		Name:        issue.Summary,
		Description: renderDescription(issue),
		StatusName:  mapping.MapStatus(issue.StatusName()),
		TeamValue:   teamValue,
		Color:       DefaultColor,
	}
}

// renderDescription composes the managed description: the versioned
// marker header followed by the issue's markdown body.
func renderDescription(issue *tracker.Issue) string {
	return descriptionHeader(issue.Key) + "\n\n" + issue.MarkdownBody()
}

// Validate checks the candidate before any network call. Any violation
// aborts only this record's processing.
func (c *Candidate) Validate() []error {
	var violations []error

	if strings.TrimSpace(c.Name) == "" {
		violations = append(violations, errors.NewValidationError("name", c.Name, "item name cannot be empty"))
	}

	if strings.TrimSpace(c.Key) == "" {
		violations = append(violations, errors.NewValidationError("key", c.Key, "external key cannot be empty"))
	} else if strings.ContainsAny(c.Key, " \t\n") {
		// A key with whitespace cannot be represented in the marker line,
		// which would break re-matching on later passes.
		violations = append(violations, errors.NewValidationError("key", c.Key, "external key is not marker-safe"))
	}

	if _, ok := ParseMarker(c.Description); !ok {
		violations = append(violations, errors.NewValidationError("description", nil, "description render lost the key marker"))
	}

	return violations
}
