package workspace

import (
	"fmt"
	"regexp"
)

// The marker is the recoverable link between a mirror item and its source
// record when the workspace has no dedicated external-key field. It is a
// versioned template shared by the create and update payload paths:
// changing the format requires bumping the version, and the parser keeps
// accepting older versions so existing items can still be re-matched.
const markerVersion = 1

// markerPattern matches any marker version ever written.
var markerPattern = regexp.MustCompile(`<!-- mirrorsync:v(\d+) key=(\S+) -->`)

// Marker renders the current-version marker line for an external key.
func Marker(key string) string {
	return fmt.Sprintf("<!-- mirrorsync:v%d key=%s -->", markerVersion, key)
}

// ParseMarker extracts the external key from a description containing a
// marker line of any version. It returns false if no marker is present.
func ParseMarker(description string) (string, bool) {
	m := markerPattern.FindStringSubmatch(description)
	if m == nil {
		return "", false
	}
	return m[2], true
}

// descriptionHeader is the managed-content banner written above the body
// of every mirrored description.
func descriptionHeader(key string) string {
	return Marker(key) + "\n\n" +
		"> Managed by mirrorsync. Manual edits will be overwritten on the next sync."
}
