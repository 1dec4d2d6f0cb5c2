package util

import "strings"

// SanitizeFilename replaces characters unsafe in a file path with dashes
// and lowercases the result, for turning a free-form suite/test name into
// a safe artifact filename.
func SanitizeFilename(name string) string {
	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "}
	safe := strings.ToLower(name)
	for _, char := range unsafe {
		safe = strings.ReplaceAll(safe, char, "-")
	}
	return safe
}
