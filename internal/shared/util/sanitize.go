package util

import (
	"errors"
	"strings"
)

// ErrInvalidName is returned for names that cannot be used as a single path element.
var ErrInvalidName = errors.New("invalid file name")

// SanitizeFileName flattens separators so name stays inside its parent
// directory. Traversal, NUL bytes and dot-only names are rejected.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") || strings.ContainsRune(s, 0) {
		return "", ErrInvalidName
	}
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(s)
	if strings.Trim(s, ".") == "" {
		return "", ErrInvalidName
	}
	return s, nil
}
