package artifact

import (
	"path/filepath"
	"strings"
)

// Store persists artifacts by name. Save returns the location the artifact
// can be retrieved from (a filesystem path for the FS store); names are
// sanitized by the implementation, so callers may pass user-derived titles.
type Store interface {
	// Save writes (or overwrites) the artifact and returns its location.
	Save(name string, data []byte) (string, error)
	// Get returns the artifact bytes or ErrNotFound.
	Get(name string) ([]byte, error)
	// List returns the stored artifact names.
	List() ([]string, error)
	// Delete removes the artifact if present or returns ErrNotFound.
	Delete(name string) error
}

// SanitizeName reduces an arbitrary title to a safe flat file name:
// path separators and traversal sequences are stripped, spaces collapse to
// underscores. An empty result falls back to "artifact".
func SanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "..", "")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "artifact"
	}
	return out
}

// Ensure a name carries the wanted extension exactly once.
func EnsureExtension(name, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return name + ext
}
