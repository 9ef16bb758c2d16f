package upload

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrEmptyFilename means sanitization left nothing usable of the base name.
var ErrEmptyFilename = errors.New("filename is empty after sanitization")

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^a-z0-9._-]`)
	dotRun        = regexp.MustCompile(`\.{2,}`)
)

// Sanitize normalizes a user-supplied filename into a safe storage name:
// directory components are stripped, the rest is lowercased, whitespace runs
// collapse to a single underscore, and anything outside [a-z0-9._-] is
// removed. Consecutive dots collapse to one, so the result never contains
// "..". The extension survives lowercasing.
//
// Sanitize is deterministic and does nothing about collisions; a caller
// wanting uniqueness must prepend its own identifier, otherwise two uploads
// with the same name silently overwrite each other in the store.
func Sanitize(original string) (string, error) {
	// Windows clients send backslash separators; treat both as path cuts.
	base := original
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}

	base = strings.ToLower(base)
	base = whitespaceRun.ReplaceAllString(base, "_")
	base = unsafeChars.ReplaceAllString(base, "")
	// Dropping unsafe characters can leave adjacent dots behind; the file
	// store refuses any name containing "..", so collapse the runs here.
	base = dotRun.ReplaceAllString(base, ".")

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	// A name of only dots, dashes and underscores is as useless as an empty
	// one, and "..gif" style stems invite confusion in logs.
	if strings.Trim(stem, "._-") == "" {
		return "", ErrEmptyFilename
	}

	return base, nil
}
