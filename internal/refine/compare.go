package refine

// DocumentOverlap reports keyword overlap for one document name common to
// both profiles.
type DocumentOverlap struct {
	DocumentName     string   `json:"document_name"`
	CommonKeywords   []string `json:"common_keywords"`
	Dataset1Keywords []string `json:"dataset1_keywords"`
	Dataset2Keywords []string `json:"dataset2_keywords"`
}

// TextComparison is the reconciliation of two profiles' text structures.
type TextComparison struct {
	Dataset1DocumentNames     []string          `json:"dataset1_document_names"`
	Dataset2DocumentNames     []string          `json:"dataset2_document_names"`
	CommonDocumentNames       []string          `json:"common_document_names"`
	Dataset1DocumentKeywords  []string          `json:"dataset1_document_keywords"`
	Dataset2DocumentKeywords  []string          `json:"dataset2_document_keywords"`
	CommonDocumentKeywords    []string          `json:"common_document_keywords"`
	PerDocumentKeywordOverlap []DocumentOverlap `json:"per_document_keyword_overlap"`
}

// keywordsByName flattens a text structure into a name -> keyword-set map.
// Documents sharing a normalized name merge their keyword sets.
func keywordsByName(txt TextStructure) map[string]map[string]struct{} {
	out := map[string]map[string]struct{}{}
	for _, docs := range txt.DocumentsByFileSet {
		for _, d := range docs {
			if d.NameNorm == "" {
				continue
			}
			set, ok := out[d.NameNorm]
			if !ok {
				set = map[string]struct{}{}
				out[d.NameNorm] = set
			}
			for _, kw := range d.Keywords {
				set[kw] = struct{}{}
			}
		}
	}
	return out
}

// CompareText matches two text structures by document name, globally by
// keyword set, and per common-named document by keyword overlap.
func CompareText(a, b TextStructure) TextComparison {
	commonNames := commonSorted(a.AllDocumentNames, b.AllDocumentNames)
	commonKeywords := commonSorted(a.AllDocumentKeywords, b.AllDocumentKeywords)

	map1 := keywordsByName(a)
	map2 := keywordsByName(b)

	overlaps := make([]DocumentOverlap, 0, len(commonNames))
	for _, name := range commonNames {
		k1 := map1[name]
		k2 := map2[name]
		overlaps = append(overlaps, DocumentOverlap{
			DocumentName:     name,
			CommonKeywords:   intersectSorted(k1, k2),
			Dataset1Keywords: sortedKeys(k1),
			Dataset2Keywords: sortedKeys(k2),
		})
	}

	return TextComparison{
		Dataset1DocumentNames:     sortedCopy(a.AllDocumentNames),
		Dataset2DocumentNames:     sortedCopy(b.AllDocumentNames),
		CommonDocumentNames:       commonNames,
		Dataset1DocumentKeywords:  sortedCopy(a.AllDocumentKeywords),
		Dataset2DocumentKeywords:  sortedCopy(b.AllDocumentKeywords),
		CommonDocumentKeywords:    commonKeywords,
		PerDocumentKeywordOverlap: overlaps,
	}
}

// ColumnOverlap reports sample overlap for one column name common to both
// profiles.
type ColumnOverlap struct {
	Column          string   `json:"column"`
	Dataset1Samples []string `json:"dataset1_samples"`
	Dataset2Samples []string `json:"dataset2_samples"`
	CommonSamples   []string `json:"common_samples"`
}

// CSVComparison is the reconciliation of two profiles' CSV structures.
type CSVComparison struct {
	Dataset1Columns        []string        `json:"dataset1_columns"`
	Dataset2Columns        []string        `json:"dataset2_columns"`
	CommonColumns          []string        `json:"common_columns"`
	PerColumnSampleOverlap []ColumnOverlap `json:"per_column_sample_overlap"`
}

// samplesByColumn flattens a CSV structure into a column -> sample-set map.
// Columns sharing a name across tables merge their samples here (and only
// here; per-table columns stay separate in the structure itself).
func samplesByColumn(csv CSVStructure) map[string]map[string]struct{} {
	out := map[string]map[string]struct{}{}
	for _, table := range csv.Tables {
		for col, samples := range table.Columns {
			set, ok := out[col]
			if !ok {
				set = map[string]struct{}{}
				out[col] = set
			}
			for _, s := range samples {
				set[s] = struct{}{}
			}
		}
	}
	return out
}

// CompareCSV matches two CSV structures by column name and, per common
// column, by sample values.
func CompareCSV(a, b CSVStructure) CSVComparison {
	commonColumns := commonSorted(a.AllColumns, b.AllColumns)

	map1 := samplesByColumn(a)
	map2 := samplesByColumn(b)

	overlaps := make([]ColumnOverlap, 0, len(commonColumns))
	for _, col := range commonColumns {
		s1 := map1[col]
		s2 := map2[col]
		overlaps = append(overlaps, ColumnOverlap{
			Column:          col,
			Dataset1Samples: sortedKeys(s1),
			Dataset2Samples: sortedKeys(s2),
			CommonSamples:   intersectSorted(s1, s2),
		})
	}

	return CSVComparison{
		Dataset1Columns:        sortedCopy(a.AllColumns),
		Dataset2Columns:        sortedCopy(b.AllColumns),
		CommonColumns:          commonColumns,
		PerColumnSampleOverlap: overlaps,
	}
}
