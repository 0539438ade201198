package tracker

import (
	"fmt"
	"strings"

	"github.com/agentstation/mirrorsync/pkg/logging"
)

// MarkdownBody renders the issue as the markdown body of a workspace item
// description: issue link, assignee, description text and attachment links.
// The leading item marker line is prepended by the workspace package so
// that the create and update paths share one marker template.
func (i *Issue) MarkdownBody() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("**Tracker Issue:** [**%s**](%s)", i.Key, i.URL))

	if text := i.Assignee.Markdown(); text != "" {
		parts = append(parts, "**Tracker Assignee:** "+text)
	}

	description := i.Description
	if description == "" {
		description = "No description provided in the tracker."
	}
	parts = append(parts, "**Tracker Description:**\n\n"+description)

	if valid := i.ValidAttachments(); len(valid) > 0 {
		parts = append(parts, "**Tracker Attachments:**")
		for _, att := range valid {
			parts = append(parts, att.Markdown())
		}
	}

	if invalid := i.InvalidAttachments(); len(invalid) > 0 {
		logging.Warn().
			Str("key", i.Key).
			Int("count", len(invalid)).
			Msg("Issue has attachments missing a filename or URL")
	}

	return strings.Join(parts, "\n\n")
}
