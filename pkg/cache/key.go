package cache

import (
	"sort"
	"strings"
)

// Key generates a deterministic cache key string from an operation name and
// its parameters. Parameters with empty values are omitted so that an absent
// filter and a nil filter hash identically.
//
// Format: operation:param1:value1:param2:value2
//
// Example:
//
//	Key("issue_labels", map[string]string{"ids": "123,456"})
//	=> "issue_labels:ids:123,456"
func Key(operation string, params map[string]string) string {
	parts := []string{operation}

	if len(params) > 0 {
		names := make([]string, 0, len(params))
		for name, value := range params {
			if value == "" {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, name, params[name])
		}
	}

	return strings.Join(parts, ":")
}
