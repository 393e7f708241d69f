package refine

import (
	"reflect"
	"testing"

	"github.com/mrossiello/profilelens/internal/profile"
)

func TestExtractCSVStructure(t *testing.T) {
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "t1", Type: "cr:FileObject", Name: "people", EncodingFormat: "text/csv"},
		},
		RecordSets: []profile.RecordSet{
			{Fields: []profile.Field{
				{Name: "Name", Source: profile.Source{FileObject: profile.Ref{ID: "t1"}}, Samples: profile.StringList{"Ada", "Grace"}},
				{Name: "AGE", Source: profile.Source{FileObject: profile.Ref{ID: "t1"}}, Samples: profile.StringList{"30"}},
				{Name: "ignored", Source: profile.Source{FileObject: profile.Ref{ID: "elsewhere"}}},
			}},
		},
	}

	csv := ExtractCSVStructure(dp)
	if len(csv.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(csv.Tables))
	}
	table := csv.Tables[0]
	if table.Name != "people" {
		t.Errorf("unexpected table name %q", table.Name)
	}
	if !reflect.DeepEqual(table.Columns["name"], []string{"ada", "grace"}) {
		t.Errorf("unexpected name samples: %v", table.Columns["name"])
	}
	if !reflect.DeepEqual(csv.AllColumns, []string{"age", "name"}) {
		t.Errorf("unexpected columns: %v", csv.AllColumns)
	}
}

func TestExtractCSVStructureNoTables(t *testing.T) {
	// No CSV-like distribution: record sets are never scanned.
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "fs1", Type: "cr:FileSet", EncodingFormat: "text/plain"},
		},
		RecordSets: []profile.RecordSet{
			{Fields: []profile.Field{{Name: "col", Source: profile.Source{FileSet: profile.Ref{ID: "fs1"}}}}},
		},
	}
	csv := ExtractCSVStructure(dp)
	if len(csv.Tables) != 0 || len(csv.AllColumns) != 0 {
		t.Errorf("expected empty structure, got %+v", csv)
	}
}

func TestExtractCSVStructureGuessedFormatNoFields(t *testing.T) {
	// Distribution guessed as CSV from contentUrl, but no record set
	// references it: the table exists with no columns.
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "d1", Type: "cr:FileObject", ContentURL: "http://x/data.csv"},
		},
	}
	csv := ExtractCSVStructure(dp)
	if len(csv.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(csv.Tables))
	}
	if len(csv.Tables[0].Columns) != 0 || len(csv.AllColumns) != 0 {
		t.Errorf("expected no columns, got %+v", csv)
	}
}

func TestExtractCSVStructureTableNameDefaultsToID(t *testing.T) {
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "t1", EncodingFormat: "text/csv"},
		},
	}
	csv := ExtractCSVStructure(dp)
	if csv.Tables[0].Name != "t1" {
		t.Errorf("expected table name to default to id, got %q", csv.Tables[0].Name)
	}
}

func TestExtractCSVStructureAccumulatesSamplesWithinTable(t *testing.T) {
	// Two fields mapping to the same column of the same table merge their
	// samples, deduped and sorted.
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "t1", EncodingFormat: "text/csv"},
		},
		RecordSets: []profile.RecordSet{
			{Fields: []profile.Field{
				{Name: "city", Source: profile.Source{FileSet: profile.Ref{ID: "t1"}}, Samples: profile.StringList{"Rome", "PARIS"}},
			}},
			{Fields: []profile.Field{
				{Name: "City", Source: profile.Source{FileSet: profile.Ref{ID: "t1"}}, Samples: profile.StringList{"paris", "Berlin"}},
			}},
		},
	}
	csv := ExtractCSVStructure(dp)
	if !reflect.DeepEqual(csv.Tables[0].Columns["city"], []string{"berlin", "paris", "rome"}) {
		t.Errorf("unexpected merged samples: %v", csv.Tables[0].Columns["city"])
	}
}

func TestExtractCSVStructureColumnsNotMergedAcrossTables(t *testing.T) {
	// Same column name in two tables: AllColumns unions the name once, but
	// each table keeps its own sample set.
	dp := &profile.DataProfile{
		Distribution: []profile.DistributionEntry{
			{ID: "t1", EncodingFormat: "text/csv"},
			{ID: "t2", EncodingFormat: "text/csv"},
		},
		RecordSets: []profile.RecordSet{
			{Fields: []profile.Field{
				{Name: "id", Source: profile.Source{FileObject: profile.Ref{ID: "t1"}}, Samples: profile.StringList{"1"}},
				{Name: "id", Source: profile.Source{FileObject: profile.Ref{ID: "t2"}}, Samples: profile.StringList{"2"}},
			}},
		},
	}
	csv := ExtractCSVStructure(dp)
	if !reflect.DeepEqual(csv.AllColumns, []string{"id"}) {
		t.Errorf("unexpected columns: %v", csv.AllColumns)
	}
	if !reflect.DeepEqual(csv.Tables[0].Columns["id"], []string{"1"}) ||
		!reflect.DeepEqual(csv.Tables[1].Columns["id"], []string{"2"}) {
		t.Errorf("samples leaked across tables: %+v", csv.Tables)
	}
}
