package workspace

// FieldValue is the value of one workspace field on an item. The
// workspace API keys values dynamically by field id; the shape depends on
// the field kind (text fields carry text, select fields carry option ids).
type FieldValue struct {
	Text      string   `json:"text,omitempty"`
	Selection []string `json:"selection,omitempty"`
}

// Item is a mirror item as fetched from the workspace. The engine never
// mutates items locally: it only computes the mutation that should be
// requested from the write collaborator.
type Item struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	StatusID      string                `json:"statusId"`
	Color         string                `json:"color,omitempty"`
	Archived      bool                  `json:"archived,omitempty"`
	CreatedAt     string                `json:"createdAt,omitempty"`
	LastUpdatedAt string                `json:"lastUpdatedAt,omitempty"`
	Fields        map[string]FieldValue `json:"fields,omitempty"`
}

// ExternalKey recovers the source record key this item mirrors. The
// dedicated key field wins when it exists and is populated; otherwise the
// description marker is the fallback. Items created outside mirrorsync
// have neither and return false.
func (it *Item) ExternalKey(keyFieldID string) (string, bool) {
	if keyFieldID != "" {
		if fv, ok := it.Fields[keyFieldID]; ok && fv.Text != "" {
			return fv.Text, true
		}
	}
	return ParseMarker(it.Description)
}
