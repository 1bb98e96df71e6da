package httpmetrics

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizePath collapses id path segments so metric cardinality stays
// bounded.
func NormalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if _, err := uuid.Parse(part); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
