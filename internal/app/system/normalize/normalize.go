// Package normalize provides input normalization helpers shared by stores
// and handlers. Stores normalize on write so the unique indexes see a
// canonical form; handlers normalize on read so lookups match.
package normalize

import "strings"

// Handle lowercases and trims a user handle. Handles are matched
// case-insensitively everywhere.
func Handle(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// Name trims surrounding whitespace from a display-name part, preserving
// inner case and spacing.
func Name(n string) string {
	return strings.TrimSpace(n)
}

// QueryParam trims a URL query parameter value.
func QueryParam(v string) string {
	return strings.TrimSpace(v)
}
