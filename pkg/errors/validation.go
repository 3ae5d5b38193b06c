package errors

import (
	"strings"
	"unicode"
)

// maxNodeIDLength bounds identifiers read from untrusted sources.
const maxNodeIDLength = 256

// ValidateNodeID validates a tree node identifier.
//
// Identifiers end up in HTML data attributes, SVG ids, DOT labels and cache
// keys, so the rules are conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No quotes or angle brackets
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}
	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxNodeIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id %q contains control characters", id)
		}
	}
	if strings.ContainsAny(id, `"'<>`) {
		return New(ErrCodeInvalidNodeID, "node id %q contains quotes or angle brackets", id)
	}
	return nil
}

// ValidatePath validates an output or input file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
