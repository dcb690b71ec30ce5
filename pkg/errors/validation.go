package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MaxQueryLength bounds the length of a search query.
const MaxQueryLength = 4096

// DefaultMaxInputSize is the largest JSON document accepted by the HTTP API (8 MiB).
const DefaultMaxInputSize = 8 << 20

// ValidateQuery checks a path search query before it is normalized.
// Blank queries are NOT rejected here; an empty query is a search outcome
// (EMPTY_QUERY), not a validation failure.
//
// Rules:
//   - Maximum length of MaxQueryLength bytes
//   - No control characters (tabs and newlines are trimmed by the caller)
func ValidateQuery(query string) error {
	if len(query) > MaxQueryLength {
		return New(ErrCodeInvalidQuery, "query too long (max %d characters)", MaxQueryLength)
	}

	for _, r := range strings.TrimSpace(query) {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidQuery, "query contains invalid control characters")
		}
	}

	return nil
}

// ValidateInputSize rejects JSON documents larger than max bytes.
// A max of zero or less uses DefaultMaxInputSize.
func ValidateInputSize(size, max int) error {
	if max <= 0 {
		max = DefaultMaxInputSize
	}
	if size > max {
		return New(ErrCodeInvalidInput, "input too large (%d bytes, max %d)", size, max)
	}
	return nil
}

// ValidateOutputPath validates a file path the CLI is about to write.
// It rejects empty paths, null bytes and directory targets.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "path contains invalid characters")
	}

	if strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}
