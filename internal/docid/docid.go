// Package docid provides identifiers for saved JCSDL documents.
package docid

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// namespace scopes content-derived IDs so they never collide with other SHA1 UUIDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:jcsdl:document"))

// New returns a random document ID.
func New() string {
	return uuid.NewString()
}

// FromPath returns a stable document ID for an imported file. The same path
// always yields the same ID, so re-importing a file updates its document.
func FromPath(absolutePath string) string {
	return uuid.NewSHA1(namespace, []byte(filepath.Clean(absolutePath))).String()
}

// Validate reports whether id has the form produced by New or FromPath.
func Validate(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid document id %q: %w", id, err)
	}
	return nil
}
