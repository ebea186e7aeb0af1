// Package strings provides string-slice utilities for append-only lists.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  doc_001 ", "doc_002", "doc_001", ""})
//	// Returns: []string{"doc_001", "doc_002"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// AppendMissing appends each incoming element not already present in base,
// preserving order. Used for append-only unions: renewal document lists and
// reviewer assignments never drop or reorder what is already recorded.
// Generic over string-typed slices so typed id lists work directly.
func AppendMissing[S ~string](base []S, incoming ...S) []S {
	if len(incoming) == 0 {
		return base
	}

	seen := make(map[S]struct{}, len(base))
	for _, v := range base {
		seen[v] = struct{}{}
	}

	for _, v := range incoming {
		trimmed := S(strings.TrimSpace(string(v)))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			base = append(base, trimmed)
		}
	}

	return base
}
