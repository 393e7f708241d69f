package similarity

import (
	"sort"
	"strings"
)

// NormalizeKeywords trims, lowercases, and dedupes keywords, dropping empty
// entries.
func NormalizeKeywords(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func subtract(a, b map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	for k := range a {
		if _, ok := b[k]; !ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// jaccard returns |a∩b| / |a∪b| in [0, 1]; 0 when both sets are empty.
func jaccard(a, b map[string]struct{}) float64 {
	union := len(a)
	common := 0
	for k := range b {
		if _, ok := a[k]; ok {
			common++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

// joinSorted renders a set as a sorted, comma-separated list.
func joinSorted(set map[string]struct{}) string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
