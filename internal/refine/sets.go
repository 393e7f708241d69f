package refine

import (
	"sort"
	"strings"
)

// normalizeSet trims, lowercases, dedupes, and sorts values, dropping
// empty strings.
func normalizeSet(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// commonSorted intersects two sorted string lists. The intersection is
// empty whenever either side is empty.
func commonSorted(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return []string{}
	}
	bSet := toSet(b)
	common := map[string]struct{}{}
	for _, v := range a {
		if _, ok := bSet[v]; ok {
			common[v] = struct{}{}
		}
	}
	return sortedKeys(common)
}

// intersectSorted intersects two sets and returns the sorted result.
func intersectSorted(a, b map[string]struct{}) []string {
	common := map[string]struct{}{}
	for v := range a {
		if _, ok := b[v]; ok {
			common[v] = struct{}{}
		}
	}
	return sortedKeys(common)
}

// sortedCopy returns a sorted copy of a string list.
func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
