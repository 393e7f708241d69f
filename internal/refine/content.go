package refine

import (
	"strings"

	"github.com/mrossiello/profilelens/internal/profile"
)

// ContentType is the coarse classification of a profile's resources.
type ContentType string

const (
	ContentTextual ContentType = "TEXTUAL"
	ContentCSV     ContentType = "CSV"
	ContentSQL     ContentType = "SQL"
	ContentMixed   ContentType = "MIXED"
	ContentUnknown ContentType = "UNKNOWN"
)

// InferContentType classifies a profile by the resolved encoding formats of
// its distribution entries. TEXTUAL and CSV require every entry to resolve
// to that family; once purity fails, SQL presence wins over MIXED. An entry
// with no resolvable format counts against purity.
func InferContentType(dp *profile.DataProfile) ContentType {
	summary := AnalyzeDistribution(dp)
	if len(summary.Items) == 0 {
		return ContentUnknown
	}

	var hasText, hasCSV, hasSQL, hasOther bool
	for _, item := range summary.Items {
		encoding := strings.ToLower(item.EncodingFormat)
		switch {
		case encoding == "":
			hasOther = true
		case strings.HasPrefix(encoding, "text/") && encoding != "text/csv":
			hasText = true
		case encoding == "text/csv" || strings.Contains(encoding, "excel"):
			hasCSV = true
		case strings.Contains(encoding, "sql"):
			hasSQL = true
		default:
			hasOther = true
		}
	}

	switch {
	case hasText && !hasCSV && !hasSQL && !hasOther:
		return ContentTextual
	case hasCSV && !hasText && !hasSQL && !hasOther:
		return ContentCSV
	case hasSQL:
		return ContentSQL
	}
	return ContentMixed
}
