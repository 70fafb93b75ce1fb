package core

import (
	"errors"
	"strings"
)

const invalidFilenameChars = "<>:\"/\\|?*"

// ErrEmptyName is returned when nothing of a file name survives sanitizing.
var ErrEmptyName = errors.New("name is empty after sanitization")

// SanitizeFilename replaces characters that are invalid in file names, and
// control characters, with a single space.
func SanitizeFilename(name string) (string, error) {
	var b strings.Builder
	b.Grow(len(name))

	lastSpace := false
	for _, r := range name {
		if r < 32 || r == 127 || strings.ContainsRune(invalidFilenameChars, r) {
			r = ' '
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
			b.WriteRune(' ')
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		return "", ErrEmptyName
	}
	return result, nil
}
