// Package report assembles Croissant-like similarity report documents for a
// folder of data profiles: every analyzed profile becomes an element and
// every scored pair a similarity link.
package report

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mrossiello/profilelens/internal/profile"
	"github.com/mrossiello/profilelens/internal/similarity"
)

// Weights records the blend used for the report, including whether the raw
// values had to be rescaled to sum to 1.
type Weights struct {
	Keywords    float64 `json:"keywords"`
	Description float64 `json:"description"`
	Headline    float64 `json:"headline"`
	Normalized  bool    `json:"normalized"`
	Threshold   float64 `json:"threshold"`
}

// Source points at the profile file an element was read from.
type Source struct {
	Type           string `json:"@type"`
	ContentURL     string `json:"contentUrl"`
	EncodingFormat string `json:"encodingFormat"`
}

// Element is one analyzed profile.
type Element struct {
	Type           string   `json:"@type"`
	ID             string   `json:"@id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Keywords       []string `json:"keywords"`
	Headline       string   `json:"headline"`
	Classification string   `json:"classification,omitempty"`
	Source         Source   `json:"source"`
}

// Metrics carries the four similarity percentages of a link.
type Metrics struct {
	KeywordsSimilarity    float64 `json:"keywords_similarity"`
	DescriptionSimilarity float64 `json:"description_similarity"`
	HeadlineSimilarity    float64 `json:"headline_similarity"`
	CombinedSimilarity    float64 `json:"combined_similarity"`
}

// Link connects two elements with their similarity metrics.
type Link struct {
	Type           string   `json:"@type"`
	ID             string   `json:"@id"`
	DataProfile1   string   `json:"dataprofile1"`
	DataProfile2   string   `json:"dataprofile2"`
	DataProfile1ID string   `json:"dataprofile1_id"`
	DataProfile2ID string   `json:"dataprofile2_id"`
	Metrics        Metrics  `json:"metrics"`
	CommonKeywords []string `json:"common_keywords"`
	UniqueTo1      []string `json:"unique_to_1"`
	UniqueTo2      []string `json:"unique_to_2"`
}

// Document is the full folder report.
type Document struct {
	Context        string    `json:"@context"`
	Type           string    `json:"@type"`
	AnalyzedFolder string    `json:"analyzedFolder"`
	Weights        Weights   `json:"weights"`
	Elements       []Element `json:"elements"`
	Links          []Link    `json:"links"`
	FromCache      bool      `json:"from_cache"`
}

const (
	reportContext = "http://mlcommons.org/croissant/"
	reportType    = "DatasetSimilarityReport"
	elementType   = "DLElement"
	linkType      = "SimilarityLink"
	sourceType    = "DataDownload"
)

// Build assembles a folder report from computed similarity scores. Profiles
// that fail to load are included with empty metadata rather than failing
// the whole report.
func Build(folder string, w Weights, scores []similarity.Score) *Document {
	doc := &Document{
		Context:        reportContext,
		Type:           reportType,
		AnalyzedFolder: folder,
		Weights:        w,
		Elements:       []Element{},
		Links:          []Link{},
	}

	names := map[string]struct{}{}
	for _, s := range scores {
		names[s.DataProfile1] = struct{}{}
		names[s.DataProfile2] = struct{}{}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		el := Element{
			Type:     elementType,
			ID:       profileID(name),
			Name:     name,
			Keywords: []string{},
			Source:   fileSource(folder, name),
		}
		dp, err := profile.Load(filepath.Join(folder, name))
		if err != nil {
			log.Printf("report: failed to load %s: %v", name, err)
		} else {
			el.Description = dp.Description
			el.Headline = dp.Headline
			el.Keywords = sortedCopy(dp.Keywords)
			el.Classification = profile.Classify(dp)
		}
		doc.Elements = append(doc.Elements, el)
	}

	for _, s := range scores {
		doc.Links = append(doc.Links, newLink(s))
	}
	return doc
}

// BuildPair assembles a single-pair report. The two elements carry only
// name and source, matching the compact per-pair export.
func BuildPair(folder string, w Weights, s similarity.Score) *Document {
	doc := &Document{
		Context:        reportContext,
		Type:           reportType,
		AnalyzedFolder: folder,
		Weights:        w,
		Elements:       []Element{},
		Links:          []Link{newLink(s)},
	}
	for _, name := range []string{s.DataProfile1, s.DataProfile2} {
		doc.Elements = append(doc.Elements, Element{
			Type:     elementType,
			ID:       profileID(name),
			Name:     name,
			Keywords: []string{},
			Source:   fileSource(folder, name),
		})
	}
	return doc
}

func newLink(s similarity.Score) Link {
	return Link{
		Type:           linkType,
		ID:             "link:" + uuid.NewString(),
		DataProfile1:   profileID(s.DataProfile1),
		DataProfile2:   profileID(s.DataProfile2),
		DataProfile1ID: s.ID1,
		DataProfile2ID: s.ID2,
		Metrics: Metrics{
			KeywordsSimilarity:    s.KeywordsSimilarity,
			DescriptionSimilarity: s.DescriptionSimilarity,
			HeadlineSimilarity:    s.HeadlineSimilarity,
			CombinedSimilarity:    s.CombinedSimilarity,
		},
		CommonKeywords: splitList(s.CommonKeywords),
		UniqueTo1:      splitList(s.UniqueTo1),
		UniqueTo2:      splitList(s.UniqueTo2),
	}
}

func profileID(name string) string {
	return "profile:" + strings.TrimSuffix(name, ".json")
}

func fileSource(folder, name string) Source {
	return Source{
		Type:           sourceType,
		ContentURL:     fmt.Sprintf("file:///%s/%s", folder, name),
		EncodingFormat: "application/json",
	}
}

// splitList turns a comma-separated keyword string back into a slice,
// dropping empties.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sortedCopy(in []string) []string {
	out := append([]string{}, in...)
	sort.Strings(out)
	return out
}
