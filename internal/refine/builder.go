package refine

import (
	"fmt"
	"strings"
	"time"
)

// DistributionOverview is the condensed distribution block of a
// RefinementProfile dataset entry.
type DistributionOverview struct {
	Total   int      `json:"total"`
	Folders int      `json:"folders"`
	Files   int      `json:"files"`
	Formats []string `json:"formats"`
}

// StructureOverview is the condensed structure block of a RefinementProfile
// dataset entry.
type StructureOverview struct {
	TextDocuments        []string `json:"textDocuments"`
	TextDocumentKeywords []string `json:"textDocumentKeywords"`
	CSVColumns           []string `json:"csvColumns"`
}

// DatasetSummary is the per-profile block of a RefinementProfile.
type DatasetSummary struct {
	ID                  string               `json:"@id"`
	ContentType         ContentType          `json:"contentType"`
	DistributionSummary DistributionOverview `json:"distributionSummary"`
	Structure           StructureOverview    `json:"structure"`
}

// TextComparisonOverview is the text half of a RefinementProfile's
// comparisons block.
type TextComparisonOverview struct {
	CommonDocumentNames       []string          `json:"commonDocumentNames"`
	CommonDocumentKeywords    []string          `json:"commonDocumentKeywords"`
	PerDocumentKeywordOverlap []DocumentOverlap `json:"perDocumentKeywordOverlap"`
}

// CSVComparisonOverview is the CSV half of a RefinementProfile's
// comparisons block.
type CSVComparisonOverview struct {
	CommonColumns          []string        `json:"commonColumns"`
	PerColumnSampleOverlap []ColumnOverlap `json:"perColumnSampleOverlap"`
}

// Comparisons groups both comparison overviews.
type Comparisons struct {
	Text TextComparisonOverview `json:"text"`
	CSV  CSVComparisonOverview  `json:"csv"`
}

// RefinementProfile is the external, Croissant-flavored projection of a
// Report.
type RefinementProfile struct {
	Type            string           `json:"@type"`
	Name            string           `json:"name"`
	GeneratedAtTime string           `json:"generatedAtTime"`
	Datasets        []DatasetSummary `json:"datasets"`
	Comparisons     Comparisons      `json:"comparisons"`
	Summary         string           `json:"summary"`
}

// BuildRefinementProfile projects an internal report into the document
// shared with external consumers. The timestamp is generated at call time
// (UTC, second precision). Absent substructures project to empty
// collections, never to nulls.
func BuildRefinementProfile(report *Report) RefinementProfile {
	perDoc := report.TextComparison.PerDocumentKeywordOverlap
	if perDoc == nil {
		perDoc = []DocumentOverlap{}
	}
	perCol := report.CSVComparison.PerColumnSampleOverlap
	if perCol == nil {
		perCol = []ColumnOverlap{}
	}

	return RefinementProfile{
		Type:            "RefinementReport",
		Name:            fmt.Sprintf("Refinement between %s and %s", report.DataProfile1, report.DataProfile2),
		GeneratedAtTime: time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		Datasets: []DatasetSummary{
			datasetSummary(report.DataProfile1, report.DataProfile1ContentType,
				report.DistributionDataset1, report.TextStructureDataset1, report.CSVStructureDataset1),
			datasetSummary(report.DataProfile2, report.DataProfile2ContentType,
				report.DistributionDataset2, report.TextStructureDataset2, report.CSVStructureDataset2),
		},
		Comparisons: Comparisons{
			Text: TextComparisonOverview{
				CommonDocumentNames:       orEmpty(report.TextComparison.CommonDocumentNames),
				CommonDocumentKeywords:    orEmpty(report.TextComparison.CommonDocumentKeywords),
				PerDocumentKeywordOverlap: perDoc,
			},
			CSV: CSVComparisonOverview{
				CommonColumns:          orEmpty(report.CSVComparison.CommonColumns),
				PerColumnSampleOverlap: perCol,
			},
		},
		Summary: report.Note,
	}
}

func datasetSummary(id string, ct ContentType, dist DistributionSummary, txt TextStructure, csv CSVStructure) DatasetSummary {
	formats := map[string]struct{}{}
	for _, item := range dist.Items {
		if item.EncodingFormat != "" {
			formats[strings.ToLower(item.EncodingFormat)] = struct{}{}
		}
	}

	return DatasetSummary{
		ID:          id,
		ContentType: ct,
		DistributionSummary: DistributionOverview{
			Total:   dist.Total,
			Folders: dist.Folders,
			Files:   dist.Files,
			Formats: sortedKeys(formats),
		},
		Structure: StructureOverview{
			TextDocuments:        orEmpty(txt.AllDocumentNames),
			TextDocumentKeywords: orEmpty(txt.AllDocumentKeywords),
			CSVColumns:           orEmpty(csv.AllColumns),
		},
	}
}

// orEmpty guards JSON output against nil slices serializing as null.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
