// Package refine performs the deep structural comparison between two data
// profiles: distribution classification, content-type inference, text and
// CSV structure extraction, and the set-based reconciliation of two
// profiles' structures into one report.
package refine

import (
	"strings"

	"github.com/mrossiello/profilelens/internal/profile"
)

// Kinds of a distribution entry, derived from its type tag suffix.
const (
	KindFolder = "folder"
	KindFile   = "file"
	KindOther  = "other"
)

// formatRules maps file-extension hints to MIME types. Evaluated top to
// bottom, first match wins.
var formatRules = []struct {
	hint string
	mime string
}{
	{".csv", "text/csv"},
	{".txt", "text/plain"},
	{".sql", "application/sql"},
	{".pdf", "application/pdf"},
	{".xls", "application/vnd.ms-excel"},
	{".xlsx", "application/vnd.ms-excel"},
}

// guessFormat infers a MIME-like type from extensions appearing in the
// entry's includes pattern, content URL, or name. Used when encodingFormat
// is absent.
func guessFormat(dist profile.DistributionEntry) string {
	joined := strings.ToLower(dist.Includes + " " + dist.ContentURL + " " + dist.Name)
	for _, rule := range formatRules {
		if strings.Contains(joined, rule.hint) {
			return rule.mime
		}
	}
	return ""
}

// resolveFormat returns the declared encodingFormat, falling back to the
// extension heuristic.
func resolveFormat(dist profile.DistributionEntry) string {
	if dist.EncodingFormat != "" {
		return dist.EncodingFormat
	}
	return guessFormat(dist)
}

// DistributionItem is the annotated view of one distribution entry.
// Includes is only surfaced for folders.
type DistributionItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	CroissantType  string `json:"croissant_type"`
	EncodingFormat string `json:"encodingFormat"`
	Includes       string `json:"includes"`
	ContentURL     string `json:"contentUrl"`
}

// DistributionSummary classifies every distribution entry of a profile.
type DistributionSummary struct {
	Total   int                `json:"total"`
	Folders int                `json:"folders"`
	Files   int                `json:"files"`
	Other   int                `json:"other"`
	Items   []DistributionItem `json:"items"`
}

// AnalyzeDistribution inspects a profile's distribution list, separating
// folder-like FileSets from single FileObjects and resolving each entry's
// encoding format. Input order is preserved.
func AnalyzeDistribution(dp *profile.DataProfile) DistributionSummary {
	summary := DistributionSummary{Items: []DistributionItem{}}

	for _, dist := range dp.Distribution {
		crType := strings.TrimSpace(dist.Type)

		kind := KindOther
		switch {
		case strings.HasSuffix(crType, "FileSet"):
			kind = KindFolder
		case strings.HasSuffix(crType, "FileObject"):
			kind = KindFile
		}

		includes := ""
		if kind == KindFolder {
			includes = dist.Includes
		}

		summary.Items = append(summary.Items, DistributionItem{
			ID:             dist.ID,
			Name:           dist.Name,
			Kind:           kind,
			CroissantType:  crType,
			EncodingFormat: resolveFormat(dist),
			Includes:       includes,
			ContentURL:     dist.ContentURL,
		})

		switch kind {
		case KindFolder:
			summary.Folders++
		case KindFile:
			summary.Files++
		default:
			summary.Other++
		}
	}

	summary.Total = len(summary.Items)
	return summary
}
