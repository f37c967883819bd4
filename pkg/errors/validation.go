package errors

import (
	"strings"
	"unicode"
)

// ValidatePartitionCount checks that k contiguous, non-empty partitions can be
// carved out of n vertices.
//
// Validation rules:
//   - n must be positive (EMPTY_INPUT otherwise)
//   - k must be at least 1
//   - k must not exceed n
func ValidatePartitionCount(k, n int) error {
	if n <= 0 {
		return New(ErrCodeEmptyInput, "cannot partition an empty line")
	}
	if k <= 0 {
		return New(ErrCodeInvalidPartitionCount, "partition count must be positive, got %d", k)
	}
	if k > n {
		return New(ErrCodeInvalidPartitionCount, "partition count %d exceeds vertex count %d", k, n)
	}
	return nil
}

// ValidateClusterTarget checks the target cluster count of a coarsening run.
func ValidateClusterTarget(k, n int) error {
	if n <= 0 {
		return New(ErrCodeEmptyInput, "cannot coarsen a graph with no vertices")
	}
	if k <= 0 {
		return New(ErrCodeInvalidPartitionCount, "target cluster count must be positive, got %d", k)
	}
	return nil
}

// ValidateNodeID rejects identifiers that cannot round-trip through the JSON,
// DOT and CSV outputs.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id %q contains control characters", id)
		}
	}
	return nil
}

// ValidatePath validates an output path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
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

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
