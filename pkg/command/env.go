package command

import (
	"sort"
	"strings"
)

// MergeEnv returns a new environment slice consisting of base with the given
// overrides applied. Keys already present in base are replaced in place;
// new keys are appended in sorted order. Neither input is mutated.
func MergeEnv(base []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))

	for _, kv := range base {
		key, _, ok := strings.Cut(kv, "=")
		if ok {
			if value, replace := overrides[key]; replace {
				merged = append(merged, key+"="+value)
				seen[key] = true
				continue
			}
		}
		merged = append(merged, kv)
	}

	remaining := make([]string, 0, len(overrides))
	for key := range overrides {
		if !seen[key] {
			remaining = append(remaining, key)
		}
	}
	sort.Strings(remaining)
	for _, key := range remaining {
		merged = append(merged, key+"="+overrides[key])
	}

	return merged
}
