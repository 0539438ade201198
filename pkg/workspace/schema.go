// Package workspace defines the mirror-side model: workspace items, the
// field/status schema fetched per run, the status mapping table, and the
// builders that turn a tracker issue into create and update payloads.
package workspace

import (
	"github.com/agentstation/mirrorsync/pkg/errors"
)

// Field kinds as reported by the workspace API.
const (
	FieldKindText        = "text"
	FieldKindSelect      = "select"
	FieldKindMultiSelect = "multi-select"
)

// Field is a workspace field definition.
type Field struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Kind    string   `json:"typeId"`
	Options []Option `json:"options,omitempty"`
}

// Option is one choice of a select or multi-select field.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Status is a workspace status definition.
type Status struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default,omitempty"`
}

// Schema is the read-only field/status lookup table for one workspace,
// built once per reconciliation pass from the fetched definitions. All
// lookups are case-sensitive exact matches: resolving against the wrong
// field in an ambiguous workspace is worse than failing visibly.
type Schema struct {
	fields       []Field
	statuses     []Status
	fieldByName  map[string]*Field
	fieldByID    map[string]*Field
	statusByName map[string]*Status
}

// NewSchema builds a Schema from fetched field and status definitions.
func NewSchema(fields []Field, statuses []Status) *Schema {
	s := &Schema{
		fields:       fields,
		statuses:     statuses,
		fieldByName:  make(map[string]*Field, len(fields)),
		fieldByID:    make(map[string]*Field, len(fields)),
		statusByName: make(map[string]*Status, len(statuses)),
	}
	for i := range s.fields {
		f := &s.fields[i]
		s.fieldByName[f.Name] = f
		s.fieldByID[f.ID] = f
	}
	for i := range s.statuses {
		s.statusByName[s.statuses[i].Name] = &s.statuses[i]
	}
	return s
}

// Fields returns the field definitions in fetch order.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Statuses returns the status definitions in fetch order.
func (s *Schema) Statuses() []Status {
	return s.statuses
}

// FieldID resolves a human-readable field name to its workspace id.
func (s *Schema) FieldID(name string) (string, error) {
	if f, ok := s.fieldByName[name]; ok {
		return f.ID, nil
	}
	return "", errors.NewNotFoundError("field", name)
}

// FieldName resolves a field id back to its human-readable name.
func (s *Schema) FieldName(id string) (string, error) {
	if f, ok := s.fieldByID[id]; ok {
		return f.Name, nil
	}
	return "", errors.NewNotFoundError("field", id)
}

// OptionID resolves an option name within a select field identified by id.
// Non-select fields have no options, so any lookup against them fails.
func (s *Schema) OptionID(fieldID, optionName string) (string, error) {
	f, ok := s.fieldByID[fieldID]
	if !ok {
		return "", errors.NewNotFoundError("field", fieldID)
	}
	if f.Kind != FieldKindSelect && f.Kind != FieldKindMultiSelect {
		return "", errors.NewValidationError("field", f.Name, "field is not a select field")
	}
	for _, opt := range f.Options {
		if opt.Name == optionName {
			return opt.ID, nil
		}
	}
	return "", errors.NewNotFoundError("option", optionName)
}

// StatusID resolves a workspace status name to its id.
func (s *Schema) StatusID(name string) (string, error) {
	if st, ok := s.statusByName[name]; ok {
		return st.ID, nil
	}
	return "", errors.NewNotFoundError("status", name)
}
