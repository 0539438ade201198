// Package tracker defines the in-memory model of a source-of-truth issue
// fetched from the tracker system. Issues are immutable within a
// reconciliation pass: the engine reads them and derives workspace
// payloads but never writes back to the tracker.
package tracker

import (
	"regexp"

	"github.com/agentstation/mirrorsync/pkg/errors"
)

// keyPattern matches tracker issue keys such as PROJ-123.
var keyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d+$`)

// Issue represents a single tracker issue.
type Issue struct {
	Key         string       // stable external key, e.g. "PROJ-123"
	URL         string       // direct link to the issue
	Summary     string       // issue title
	Description string       // raw rich-text description
	Status      *Status      // current status, nil if unset
	Assignee    *Assignee    // current assignee, nil if unassigned
	Attachments []Attachment // attachment references
	Updated     string       // last-updated timestamp, normalized
	Project     string       // tracker project key
}

// Status represents a tracker issue status.
type Status struct {
	Name         string
	ID           string
	CategoryKey  string
	CategoryName string
}

// Assignee represents a tracker issue assignee.
type Assignee struct {
	DisplayName  string
	EmailAddress string
	AccountID    string
}

// Markdown renders the assignee as "Name (email)" for description output.
func (a *Assignee) Markdown() string {
	if a == nil || a.DisplayName == "" {
		return ""
	}

	text := a.DisplayName
	if a.EmailAddress != "" {
		text += " (" + a.EmailAddress + ")"
	}
	return text
}

// Attachment represents a tracker attachment reference.
type Attachment struct {
	Filename  string
	URL       string
	Thumbnail string
}

// Markdown renders the attachment as a markdown link list entry.
func (a Attachment) Markdown() string {
	if a.URL == "" {
		return "- " + a.Filename
	}
	return "- [" + a.Filename + "](" + a.URL + ")"
}

// Valid reports whether the attachment carries both a filename and a URL.
func (a Attachment) Valid() bool {
	return a.Filename != "" && a.URL != ""
}

// StatusName returns the status name, or empty string if no status.
func (i *Issue) StatusName() string {
	if i.Status == nil {
		return ""
	}
	return i.Status.Name
}

// ValidAttachments returns the attachments that carry both filename and URL.
func (i *Issue) ValidAttachments() []Attachment {
	valid := make([]Attachment, 0, len(i.Attachments))
	for _, att := range i.Attachments {
		if att.Valid() {
			valid = append(valid, att)
		}
	}
	return valid
}

// InvalidAttachments returns attachments missing a filename or URL.
func (i *Issue) InvalidAttachments() []Attachment {
	var invalid []Attachment
	for _, att := range i.Attachments {
		if !att.Valid() {
			invalid = append(invalid, att)
		}
	}
	return invalid
}

// Validate checks the issue data and returns all violations found.
// A violating issue is skipped by the reconciler; it never aborts the run.
func (i *Issue) Validate() []error {
	var violations []error

	if i.Key == "" {
		violations = append(violations, errors.NewValidationError("key", i.Key, "external key is required"))
	} else if !keyPattern.MatchString(i.Key) {
		violations = append(violations, errors.NewValidationError("key", i.Key, "malformed external key"))
	}

	if i.Summary == "" {
		violations = append(violations, errors.NewValidationError("summary", i.Summary, "summary is required"))
	}

	return violations
}
