package refine

import (
	"testing"

	"github.com/mrossiello/profilelens/internal/profile"
)

func TestAnalyzeDistributionKinds(t *testing.T) {
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "fs1", Type: "cr:FileSet", Name: "texts", EncodingFormat: "text/plain", Includes: "docs/*.txt"},
			{ID: "fo1", Type: "cr:FileObject", Name: "table", EncodingFormat: "text/csv"},
			{ID: "x1", Type: "cr:Something", Name: "misc"},
		},
	}

	summary := AnalyzeDistribution(dp)
	if summary.Total != 3 || summary.Folders != 1 || summary.Files != 1 || summary.Other != 1 {
		t.Errorf("unexpected counts: %+v", summary)
	}
	if summary.Items[0].Kind != KindFolder || summary.Items[1].Kind != KindFile || summary.Items[2].Kind != KindOther {
		t.Errorf("unexpected kinds: %+v", summary.Items)
	}
}

func TestAnalyzeDistributionIncludesOnlyForFolders(t *testing.T) {
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "fs1", Type: "cr:FileSet", Includes: "a/*.txt"},
			{ID: "fo1", Type: "cr:FileObject", Includes: "b/*.txt", ContentURL: "b.txt"},
		},
	}

	summary := AnalyzeDistribution(dp)
	if summary.Items[0].Includes != "a/*.txt" {
		t.Errorf("expected includes kept for folder, got %q", summary.Items[0].Includes)
	}
	if summary.Items[1].Includes != "" {
		t.Errorf("expected includes dropped for file, got %q", summary.Items[1].Includes)
	}
}

func TestAnalyzeDistributionEmpty(t *testing.T) {
	summary := AnalyzeDistribution(&profile.DataProfile{})
	if summary.Total != 0 || len(summary.Items) != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}

func TestGuessFormatPriority(t *testing.T) {
	tests := []struct {
		name string
		dist profile.DistributionEntry
		want string
	}{
		{"csv from contentUrl", profile.DistributionEntry{ContentURL: "http://x/data.CSV"}, "text/csv"},
		{"txt from includes", profile.DistributionEntry{Includes: "corpus/*.txt"}, "text/plain"},
		{"sql from name", profile.DistributionEntry{Name: "dump.sql"}, "application/sql"},
		{"pdf", profile.DistributionEntry{ContentURL: "report.pdf"}, "application/pdf"},
		{"xlsx", profile.DistributionEntry{Name: "sheet.xlsx"}, "application/vnd.ms-excel"},
		{"csv wins over txt", profile.DistributionEntry{Includes: "a.txt", ContentURL: "b.csv"}, "text/csv"},
		{"no hint", profile.DistributionEntry{Name: "whatever"}, ""},
	}
	for _, tt := range tests {
		if got := guessFormat(tt.dist); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestResolveFormatPrefersDeclared(t *testing.T) {
	dist := profile.DistributionEntry{EncodingFormat: "application/json", ContentURL: "data.csv"}
	if got := resolveFormat(dist); got != "application/json" {
		t.Errorf("expected declared format to win, got %q", got)
	}
}
