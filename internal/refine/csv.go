package refine

import (
	"strings"

	"github.com/mrossiello/profilelens/internal/profile"
)

// Table is one CSV-like distribution entry with its accumulated columns.
// Column names are lowercased; sample lists are deduped and sorted.
type Table struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Columns map[string][]string `json:"columns"`
}

// CSVStructure is the tabular view of a profile. AllColumns unions column
// names only; sample values stay per table.
type CSVStructure struct {
	Tables     []Table  `json:"tables"`
	AllColumns []string `json:"all_columns"`
}

// ExtractCSVStructure collects CSV and spreadsheet distribution entries as
// tables and binds record-set fields to them as columns with sample values.
// Fields mapping to the same column name within one table accumulate their
// samples; normalization happens in a final pass.
func ExtractCSVStructure(dp *profile.DataProfile) CSVStructure {
	type tableAcc struct {
		id      string
		name    string
		columns map[string][]string
	}

	var order []string
	sources := map[string]*tableAcc{}

	for _, dist := range dp.Distribution {
		encoding := strings.ToLower(resolveFormat(dist))
		if encoding != "text/csv" && !strings.Contains(encoding, "excel") {
			continue
		}
		if dist.ID == "" {
			continue
		}
		if _, ok := sources[dist.ID]; ok {
			continue
		}
		name := dist.Name
		if name == "" {
			name = dist.ID
		}
		sources[dist.ID] = &tableAcc{id: dist.ID, name: name, columns: map[string][]string{}}
		order = append(order, dist.ID)
	}

	if len(sources) == 0 {
		return CSVStructure{Tables: []Table{}, AllColumns: []string{}}
	}

	for _, rs := range dp.RecordSets {
		for _, field := range rs.Fields {
			srcID := field.Source.FileSet.ID
			if srcID == "" {
				srcID = field.Source.FileObject.ID
			}
			table, ok := sources[srcID]
			if !ok {
				continue
			}
			col := strings.ToLower(strings.TrimSpace(field.Name))
			if col == "" {
				continue
			}
			table.columns[col] = append(table.columns[col], normalizeSet(field.Samples)...)
		}
	}

	allColumns := map[string]struct{}{}
	tables := make([]Table, 0, len(order))
	for _, id := range order {
		acc := sources[id]
		columns := make(map[string][]string, len(acc.columns))
		for col, samples := range acc.columns {
			columns[col] = normalizeSet(samples)
			allColumns[col] = struct{}{}
		}
		tables = append(tables, Table{ID: acc.id, Name: acc.name, Columns: columns})
	}

	return CSVStructure{Tables: tables, AllColumns: sortedKeys(allColumns)}
}
