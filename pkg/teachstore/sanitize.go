package teachstore

import (
	"path/filepath"
	"strings"
)

// SanitizeFileName reduces a caller-supplied filename to a form safe for use
// in a stored path: directory components are stripped, path separators and
// control characters dropped, and leading dots removed so the result can
// never traverse out of the upload root or hide as a dotfile. An empty
// result falls back to "file".
func SanitizeFileName(name string) string {
	// Strip any directory part, handling both separator conventions.
	name = filepath.Base(name)
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == 0:
			// path separators and NUL never pass through
		case r < 0x20 || r == 0x7f:
			// control characters
		default:
			b.WriteRune(r)
		}
	}
	name = strings.TrimLeft(b.String(), ".")

	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
