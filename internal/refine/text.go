package refine

import (
	"strings"

	"github.com/mrossiello/profilelens/internal/profile"
)

// FileSetInfo describes one text/plain FileSet distribution entry.
type FileSetInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Includes   string `json:"includes"`
	ContentURL string `json:"contentUrl"`
}

// Document is a text document bound to a FileSet through a record-set field.
type Document struct {
	Name     string   `json:"name"`
	NameNorm string   `json:"name_norm"`
	Keywords []string `json:"keywords"`
}

// TextStructure is the text-document view of a profile. Every key of
// DocumentsByFileSet also exists in FileSets; the All* lists are the sorted
// unions across all file sets.
type TextStructure struct {
	FileSets            map[string]FileSetInfo `json:"file_sets"`
	DocumentsByFileSet  map[string][]Document  `json:"documents_by_file_set"`
	AllDocumentNames    []string               `json:"all_document_names"`
	AllDocumentKeywords []string               `json:"all_document_keywords"`
}

// ExtractTextStructure collects text/plain FileSets and the Document fields
// bound to them. Fields referencing unknown file sets or carrying an empty
// name are skipped silently.
func ExtractTextStructure(dp *profile.DataProfile) TextStructure {
	fileSets := map[string]FileSetInfo{}
	for _, dist := range dp.Distribution {
		if !strings.HasSuffix(strings.TrimSpace(dist.Type), "FileSet") {
			continue
		}
		if strings.ToLower(resolveFormat(dist)) != "text/plain" {
			continue
		}
		if dist.ID == "" {
			continue
		}
		fileSets[dist.ID] = FileSetInfo{
			ID:         dist.ID,
			Name:       dist.Name,
			Includes:   dist.Includes,
			ContentURL: dist.ContentURL,
		}
	}

	docs := make(map[string][]Document, len(fileSets))
	for id := range fileSets {
		docs[id] = []Document{}
	}

	for _, rs := range dp.RecordSets {
		for _, field := range rs.Fields {
			if !strings.HasSuffix(field.Type, "Document") {
				continue
			}
			fsID := field.Source.FileSet.ID
			if _, ok := fileSets[fsID]; !ok {
				continue
			}
			name := strings.TrimSpace(field.Name)
			if name == "" {
				continue
			}
			docs[fsID] = append(docs[fsID], Document{
				Name:     name,
				NameNorm: strings.ToLower(name),
				Keywords: normalizeSet(field.Keywords),
			})
		}
	}

	names := map[string]struct{}{}
	keywords := map[string]struct{}{}
	for _, ds := range docs {
		for _, d := range ds {
			if d.NameNorm != "" {
				names[d.NameNorm] = struct{}{}
			}
			for _, kw := range d.Keywords {
				keywords[kw] = struct{}{}
			}
		}
	}

	return TextStructure{
		FileSets:            fileSets,
		DocumentsByFileSet:  docs,
		AllDocumentNames:    sortedKeys(names),
		AllDocumentKeywords: sortedKeys(keywords),
	}
}
