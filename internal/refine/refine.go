package refine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrossiello/profilelens/internal/profile"
)

// ErrNotFound is returned when one or both profile files are missing.
var ErrNotFound = errors.New("profile not found")

// Report is the full internal result of refining one profile pair.
type Report struct {
	DataProfile1            string              `json:"dataprofile1"`
	DataProfile2            string              `json:"dataprofile2"`
	DataProfile1ContentType ContentType         `json:"dataprofile1_content_type"`
	DataProfile2ContentType ContentType         `json:"dataprofile2_content_type"`
	DistributionDataset1    DistributionSummary `json:"distribution_dataset1"`
	DistributionDataset2    DistributionSummary `json:"distribution_dataset2"`
	TextStructureDataset1   TextStructure       `json:"txt_structure_dataset1"`
	TextStructureDataset2   TextStructure       `json:"txt_structure_dataset2"`
	CSVStructureDataset1    CSVStructure        `json:"csv_structure_dataset1"`
	CSVStructureDataset2    CSVStructure        `json:"csv_structure_dataset2"`
	TextComparison          TextComparison      `json:"txt_comparison"`
	CSVComparison           CSVComparison       `json:"csv_schema_comparison"`
	Note                    string              `json:"note"`
}

// Refine loads two profiles from folder and produces the structural
// comparison report. A missing file yields an error wrapping ErrNotFound
// that names both resolved paths; malformed JSON surfaces as a parse error.
func Refine(folder, name1, name2 string) (*Report, error) {
	file1 := filepath.Join(folder, name1)
	file2 := filepath.Join(folder, name2)

	_, err1 := os.Stat(file1)
	_, err2 := os.Stat(file2)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("%w: one or both files not found: %s / %s", ErrNotFound, file1, file2)
	}

	dp1, err := profile.Load(file1)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name1, err)
	}
	dp2, err := profile.Load(file2)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name2, err)
	}

	contentType1 := InferContentType(dp1)
	contentType2 := InferContentType(dp2)

	txt1 := ExtractTextStructure(dp1)
	txt2 := ExtractTextStructure(dp2)
	txtCmp := CompareText(txt1, txt2)

	csv1 := ExtractCSVStructure(dp1)
	csv2 := ExtractCSVStructure(dp2)
	csvCmp := CompareCSV(csv1, csv2)

	return &Report{
		DataProfile1:            name1,
		DataProfile2:            name2,
		DataProfile1ContentType: contentType1,
		DataProfile2ContentType: contentType2,
		DistributionDataset1:    AnalyzeDistribution(dp1),
		DistributionDataset2:    AnalyzeDistribution(dp2),
		TextStructureDataset1:   txt1,
		TextStructureDataset2:   txt2,
		CSVStructureDataset1:    csv1,
		CSVStructureDataset2:    csv2,
		TextComparison:          txtCmp,
		CSVComparison:           csvCmp,
		Note:                    buildNote(contentType1, contentType2, txtCmp, csvCmp),
	}, nil
}

// buildNote synthesizes the human-readable summary sentences in a fixed
// order: content types first, then each structural finding that applies,
// else a single fallback sentence.
func buildNote(ct1, ct2 ContentType, txtCmp TextComparison, csvCmp CSVComparison) string {
	notes := []string{
		fmt.Sprintf("Dataset1 content type: %s.", ct1),
		fmt.Sprintf("Dataset2 content type: %s.", ct2),
	}

	if n := len(txtCmp.CommonDocumentNames); n > 0 {
		notes = append(notes, fmt.Sprintf("TXT: found %d common document names.", n))
	}
	if n := len(txtCmp.CommonDocumentKeywords); n > 0 {
		notes = append(notes, fmt.Sprintf("TXT: found %d common document keywords.", n))
	}

	withOverlap := 0
	for _, d := range txtCmp.PerDocumentKeywordOverlap {
		if len(d.CommonKeywords) > 0 {
			withOverlap++
		}
	}
	if withOverlap > 0 {
		notes = append(notes, fmt.Sprintf("TXT: keyword overlap detected for %d common-named documents.", withOverlap))
	}

	if n := len(csvCmp.CommonColumns); n > 0 {
		notes = append(notes, fmt.Sprintf("CSV: found %d common column names.", n))
	}

	if len(txtCmp.CommonDocumentNames) == 0 &&
		len(txtCmp.CommonDocumentKeywords) == 0 &&
		len(csvCmp.CommonColumns) == 0 {
		notes = append(notes, "No clear structural similarity found (TXT or CSV).")
	}

	return strings.Join(notes, " ")
}
