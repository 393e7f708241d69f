package refine

import (
	"reflect"
	"testing"

	"github.com/mrossiello/profilelens/internal/profile"
)

func textProfile() *profile.DataProfile {
	return &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "fs1", Type: "cr:FileSet", Name: "texts", EncodingFormat: "text/plain", Includes: "docs/*.txt"},
			{ID: "fs2", Type: "cr:FileSet", Name: "tables", EncodingFormat: "text/csv"},
		},
		RecordSets: []profile.RecordSet{
			{Name: "docs", Fields: []profile.Field{
				{Type: "cr:Document", Name: "Manifest", Source: profile.Source{FileSet: profile.Ref{ID: "fs1"}}, Keywords: profile.StringList{"Intro", "DATA", " data "}},
				{Type: "cr:Document", Name: "  ", Source: profile.Source{FileSet: profile.Ref{ID: "fs1"}}},
				{Type: "cr:Document", Name: "Orphan", Source: profile.Source{FileSet: profile.Ref{ID: "unknown"}}},
				{Type: "cr:Field", Name: "not-a-document", Source: profile.Source{FileSet: profile.Ref{ID: "fs1"}}},
			}},
		},
	}
}

func TestExtractTextStructure(t *testing.T) {
	txt := ExtractTextStructure(textProfile())

	if len(txt.FileSets) != 1 {
		t.Fatalf("expected 1 text file set, got %d", len(txt.FileSets))
	}
	fs, ok := txt.FileSets["fs1"]
	if !ok || fs.Includes != "docs/*.txt" {
		t.Errorf("unexpected file set: %+v", txt.FileSets)
	}

	docs := txt.DocumentsByFileSet["fs1"]
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Name != "Manifest" || docs[0].NameNorm != "manifest" {
		t.Errorf("unexpected document: %+v", docs[0])
	}
	// Keywords trimmed, lowercased, deduped, sorted.
	if !reflect.DeepEqual(docs[0].Keywords, []string{"data", "intro"}) {
		t.Errorf("unexpected keywords: %v", docs[0].Keywords)
	}

	if !reflect.DeepEqual(txt.AllDocumentNames, []string{"manifest"}) {
		t.Errorf("unexpected names: %v", txt.AllDocumentNames)
	}
	if !reflect.DeepEqual(txt.AllDocumentKeywords, []string{"data", "intro"}) {
		t.Errorf("unexpected keywords union: %v", txt.AllDocumentKeywords)
	}
}

func TestExtractTextStructureSingleStringKeyword(t *testing.T) {
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "fs1", Type: "cr:FileSet", EncodingFormat: "text/plain"},
		},
		RecordSets: []profile.RecordSet{
			{Fields: []profile.Field{
				{Type: "cr:Document", Name: "Readme", Source: profile.Source{FileSet: profile.Ref{ID: "fs1"}}, Keywords: profile.StringList{"Solo"}},
			}},
		},
	}
	txt := ExtractTextStructure(dp)
	if !reflect.DeepEqual(txt.AllDocumentKeywords, []string{"solo"}) {
		t.Errorf("expected [solo], got %v", txt.AllDocumentKeywords)
	}
}

func TestExtractTextStructureGuessedFormat(t *testing.T) {
	// A FileSet without encodingFormat but with a .txt includes pattern
	// still counts as a text file set.
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "fs1", Type: "cr:FileSet", Includes: "corpus/*.txt"},
		},
	}
	txt := ExtractTextStructure(dp)
	if len(txt.FileSets) != 1 {
		t.Errorf("expected guessed text file set, got %+v", txt.FileSets)
	}
}

func TestExtractTextStructureSkipsFileSetWithoutID(t *testing.T) {
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{Type: "cr:FileSet", EncodingFormat: "text/plain"},
		},
	}
	txt := ExtractTextStructure(dp)
	if len(txt.FileSets) != 0 {
		t.Errorf("expected no file sets, got %+v", txt.FileSets)
	}
}

func TestExtractTextStructureNoRecordSets(t *testing.T) {
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "fs1", Type: "cr:FileSet", EncodingFormat: "text/plain"},
		},
	}
	txt := ExtractTextStructure(dp)
	if len(txt.DocumentsByFileSet["fs1"]) != 0 {
		t.Errorf("expected no documents, got %+v", txt.DocumentsByFileSet)
	}
	if len(txt.AllDocumentNames) != 0 {
		t.Errorf("expected empty name union, got %v", txt.AllDocumentNames)
	}
}
