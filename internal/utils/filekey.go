package utils

import (
	"regexp"
	"strings"
)

// File keys arrive from clients and end up in spool file paths, so anything
// that is not a plain token is stripped.
var invalidFileKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFileKey reduces a client-supplied file key to a safe filename
// token. Returns an empty string when nothing usable remains; callers
// generate a fresh key in that case.
func SanitizeFileKey(key string) string {
	key = strings.TrimSpace(key)
	key = invalidFileKeyChars.ReplaceAllString(key, "")
	key = strings.Trim(key, ".")

	if len(key) > 100 {
		key = key[:100]
	}
	return key
}
