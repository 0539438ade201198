package workspace

import (
	"github.com/agentstation/mirrorsync/pkg/logging"
)

// FieldConfig names the workspace fields mirrorsync manages, as
// configured. Names are resolved against the schema once per record.
type FieldConfig struct {
	// KeyField is the dedicated external-key field name. When empty, or
	// when the field does not exist in the workspace, the description
	// marker is the only key carrier.
	KeyField string

	// TeamField is an optional select field name used to tag mirrored
	// items with a team.
	TeamField string
}

// ResolvedFields holds the workspace ids a payload needs, resolved from
// the schema for one candidate. Every id traces to a fetched definition.
type ResolvedFields struct {
	StatusID     string
	KeyFieldID   string // empty means description-embedding fallback
	TeamFieldID  string // empty when no team field is configured
	TeamOptionID string
}

// ResolveFields resolves the candidate's status and configured field
// names against the schema. A missing status or team field/option fails
// this record. A missing dedicated key field degrades to the description
// marker instead of failing, so dedup capability is preserved.
func ResolveFields(c *Candidate, schema *Schema, cfg FieldConfig) (ResolvedFields, error) {
	var rf ResolvedFields

	if c.StatusName != "" {
		statusID, err := schema.StatusID(c.StatusName)
		if err != nil {
			return rf, err
		}
		rf.StatusID = statusID
	}

	if cfg.KeyField != "" {
		keyFieldID, err := schema.FieldID(cfg.KeyField)
		if err != nil {
			logging.Warn().
				Str("field", cfg.KeyField).
				Str("key", c.Key).
				Msg("Dedicated key field not found in workspace, falling back to description marker")
		} else {
			rf.KeyFieldID = keyFieldID
		}
	}

	if cfg.TeamField != "" && c.TeamValue != "" {
		teamFieldID, err := schema.FieldID(cfg.TeamField)
		if err != nil {
			return rf, err
		}
		optionID, err := schema.OptionID(teamFieldID, c.TeamValue)
		if err != nil {
			return rf, err
		}
		rf.TeamFieldID = teamFieldID
		rf.TeamOptionID = optionID
	}

	return rf, nil
}

// Description is the rich-text description body of a create payload.
type Description struct {
	Markdown string `json:"markdown"`
	RichText bool   `json:"richText"`
}

// CreatePayload is the request body for creating one workspace item.
type CreatePayload struct {
	Name                 string                `json:"name"`
	Description          Description           `json:"description"`
	StatusID             string                `json:"statusId,omitempty"`
	Color                string                `json:"color"`
	AssigneeUserIDs      []string              `json:"assigneeUserIds"`
	AssigneeUserGroupIDs []string              `json:"assigneeUserGroupIds"`
	Order                int                   `json:"order"`
	Fields               map[string]FieldValue `json:"fields"`
}

// PatchOp is a single JSON-Patch replace operation against an item.
type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// BuildCreatePayload produces the creation request body for a candidate.
func BuildCreatePayload(c *Candidate, rf ResolvedFields) CreatePayload {
	fields := make(map[string]FieldValue)
	if rf.KeyFieldID != "" {
		fields[rf.KeyFieldID] = FieldValue{Text: c.Key}
	}
	if rf.TeamFieldID != "" {
		fields[rf.TeamFieldID] = FieldValue{Selection: []string{rf.TeamOptionID}}
	}

	return CreatePayload{
		Name:                 c.Name,
		Description:          Description{Markdown: c.Description, RichText: true},
		StatusID:             rf.StatusID,
		Color:                c.Color,
		AssigneeUserIDs:      []string{},
		AssigneeUserGroupIDs: []string{},
		Fields:               fields,
	}
}

// BuildPatchOps produces the ordered replace operations for updating an
// existing item. Every run is a full overwrite of the mirrored fields:
// title, description, status, key field and team field are always
// replaced, whether or not they changed and whether or not the field was
// ever set on the item. Convergence to the source of truth wins over
// preserving manual edits.
func BuildPatchOps(c *Candidate, rf ResolvedFields) []PatchOp {
	ops := []PatchOp{
		{Op: "replace", Path: "/name", Value: c.Name},
		// Plain string under the markdown media type; the marker header
		// is already part of the rendered description.
		{Op: "replace", Path: "/description", Value: c.Description},
	}

	if rf.StatusID != "" {
		ops = append(ops, PatchOp{Op: "replace", Path: "/statusId", Value: rf.StatusID})
	}

	if rf.KeyFieldID != "" {
		ops = append(ops, PatchOp{
			Op:    "replace",
			Path:  "/fields/" + rf.KeyFieldID,
			Value: FieldValue{Text: c.Key},
		})
	}

	if rf.TeamFieldID != "" {
		ops = append(ops, PatchOp{
			Op:    "replace",
			Path:  "/fields/" + rf.TeamFieldID,
			Value: FieldValue{Selection: []string{rf.TeamOptionID}},
		})
	}

	return ops
}
