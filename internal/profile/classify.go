package profile

import "strings"

// Classification buckets for a profile's overall shape.
const (
	ClassTabular      = "tabular"
	ClassRelational   = "relational"
	ClassUnstructured = "unstructured"
)

// Classify sorts a profile into tabular, relational, or unstructured using
// record-set shape and encoding hints:
//   - field-less or very large record sets read as text corpora or raw
//     material collections (unstructured)
//   - three or more record sets with at least one real table, or any SQL
//     distribution, read as multi-table datasets (relational)
//   - one or two moderately sized record sets read as classic tables (tabular)
func Classify(dp *DataProfile) string {
	fieldsPerRS := make([]int, len(dp.RecordSets))
	for i, rs := range dp.RecordSets {
		fieldsPerRS[i] = len(rs.Fields)
	}

	for _, n := range fieldsPerRS {
		if n == 0 || n > 1000 {
			return ClassUnstructured
		}
	}

	if len(fieldsPerRS) >= 3 {
		for _, n := range fieldsPerRS {
			if n >= 5 {
				return ClassRelational
			}
		}
	}

	for _, dist := range dp.Distribution {
		if strings.Contains(strings.ToLower(dist.EncodingFormat), "sql") {
			return ClassRelational
		}
	}

	if n := len(fieldsPerRS); n == 1 || n == 2 {
		tabular := true
		for _, f := range fieldsPerRS {
			if f < 1 || f > 50 {
				tabular = false
				break
			}
		}
		if tabular {
			return ClassTabular
		}
	}

	return ClassUnstructured
}
