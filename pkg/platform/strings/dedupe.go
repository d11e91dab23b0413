// Package strings holds the text helpers shared by the parsers and validator.
package strings

import (
	"strings"
)

// DedupeKeys trims, lowercases and de-duplicates field keys, dropping empties.
// First occurrence wins, so caller order is kept. A nil input stays nil.
func DedupeKeys(keys []string) []string {
	if keys == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
