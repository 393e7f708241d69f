// Package similarity computes pairwise similarity scores between all data
// profiles in a folder, blending keyword overlap with embedding-based
// description and headline similarity. Batches are cached per folder and
// weight combination.
package similarity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrossiello/profilelens/internal/database"
	"github.com/mrossiello/profilelens/internal/embedding"
	"github.com/mrossiello/profilelens/internal/profile"
)

// Score is one pairwise similarity record. All percentages are rounded to
// two decimals.
type Score struct {
	DataProfile1          string  `json:"dataprofile1"`
	DataProfile2          string  `json:"dataprofile2"`
	ID1                   string  `json:"id1"`
	ID2                   string  `json:"id2"`
	KeywordsSimilarity    float64 `json:"keywords_similarity"`
	DescriptionSimilarity float64 `json:"description_similarity"`
	HeadlineSimilarity    float64 `json:"headline_similarity"`
	CombinedSimilarity    float64 `json:"combined_similarity"`
	CommonKeywords        string  `json:"common_keywords"`
	CommonCount           int     `json:"common_count"`
	UniqueTo1             string  `json:"unique_to_1"`
	UniqueTo2             string  `json:"unique_to_2"`
	PassesThreshold       bool    `json:"passes_threshold"`
}

// Engine computes pairwise profile similarities. The description and
// headline embedders are separate so a long-text and a short-text model can
// be used side by side. The database is optional; without it every call
// recomputes.
type Engine struct {
	descEmbedder embedding.Embedder
	headEmbedder embedding.Embedder
	db           *database.DB
}

// NewEngine creates a similarity engine.
func NewEngine(descEmbedder, headEmbedder embedding.Embedder, db *database.DB) *Engine {
	return &Engine{descEmbedder: descEmbedder, headEmbedder: headEmbedder, db: db}
}

type profileInfo struct {
	name        string
	id          string
	keywords    map[string]struct{}
	description string
	headline    string
}

// Compute scores every unordered pair of JSON profiles in folder. A cached
// batch for the same folder and weights is reused with only the threshold
// re-applied; the second return value reports that case.
func (e *Engine) Compute(ctx context.Context, folder string, w Weights) ([]Score, bool, error) {
	key := database.CacheKey(folder, w.Keywords, w.Description, w.Headline)

	if e.db != nil {
		if payload, err := e.db.GetCachedScores(key); err == nil && payload != nil {
			var scores []Score
			if err := json.Unmarshal(payload, &scores); err == nil {
				log.Printf("cache hit: %s", key)
				applyThreshold(scores, w.Threshold)
				return scores, true, nil
			}
			log.Printf("cache read failed for %s, recalculating", key)
		}
	}

	profiles, err := loadFolder(folder)
	if err != nil {
		return nil, false, err
	}

	descriptions := make([]string, len(profiles))
	headlines := make([]string, len(profiles))
	for i, p := range profiles {
		descriptions[i] = p.description
		headlines[i] = p.headline
	}

	descEmb, err := e.descEmbedder.Embed(ctx, descriptions)
	if err != nil {
		return nil, false, fmt.Errorf("embedding descriptions: %w", err)
	}
	headEmb, err := e.headEmbedder.Embed(ctx, headlines)
	if err != nil {
		return nil, false, fmt.Errorf("embedding headlines: %w", err)
	}
	if len(descEmb) != len(profiles) || len(headEmb) != len(profiles) {
		return nil, false, fmt.Errorf("embedder returned %d/%d vectors for %d profiles",
			len(descEmb), len(headEmb), len(profiles))
	}

	scores := []Score{}
	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			scores = append(scores, scorePair(
				profiles[i], profiles[j],
				cosine(descEmb[i], descEmb[j]),
				cosine(headEmb[i], headEmb[j]),
				w,
			))
		}
	}

	if e.db != nil {
		if payload, err := json.Marshal(scores); err == nil {
			if err := e.db.PutCachedScores(key, folder, w.Keywords, w.Description, w.Headline, payload); err != nil {
				log.Printf("failed to save cache %s: %v", key, err)
			}
		}
	}

	return scores, false, nil
}

// loadFolder reads every *.json profile in folder, skipping files that do
// not parse.
func loadFolder(folder string) ([]profileInfo, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("folder not found: %s", folder)
	}

	var profiles []profileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		dp, err := profile.Load(filepath.Join(folder, entry.Name()))
		if err != nil {
			log.Printf("skipping %s: %v", entry.Name(), err)
			continue
		}
		profiles = append(profiles, profileInfo{
			name:        entry.Name(),
			id:          dp.ID,
			keywords:    NormalizeKeywords(dp.Keywords),
			description: dp.Description,
			headline:    dp.Headline,
		})
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("no .json profiles found in %s", folder)
	}
	return profiles, nil
}

func scorePair(p1, p2 profileInfo, descSim, headSim float64, w Weights) Score {
	common := intersect(p1.keywords, p2.keywords)
	keywordSim := jaccard(p1.keywords, p2.keywords) * 100

	descSim = clamp01(descSim)
	headSim = clamp01(headSim)

	combined := (w.Keywords*(keywordSim/100) + w.Description*descSim + w.Headline*headSim) * 100

	return Score{
		DataProfile1:          p1.name,
		DataProfile2:          p2.name,
		ID1:                   p1.id,
		ID2:                   p2.id,
		KeywordsSimilarity:    round2(keywordSim),
		DescriptionSimilarity: round2(descSim * 100),
		HeadlineSimilarity:    round2(headSim * 100),
		CombinedSimilarity:    round2(combined),
		CommonKeywords:        joinSorted(common),
		CommonCount:           len(common),
		UniqueTo1:             joinSorted(subtract(p1.keywords, p2.keywords)),
		UniqueTo2:             joinSorted(subtract(p2.keywords, p1.keywords)),
		PassesThreshold:       combined >= w.Threshold,
	}
}

// applyThreshold recomputes passes_threshold on a cached batch.
func applyThreshold(scores []Score, threshold float64) {
	for i := range scores {
		scores[i].PassesThreshold = scores[i].CombinedSimilarity >= threshold
	}
}

// cosine returns the cosine similarity of two vectors, 0 for mismatched or
// zero-norm input.
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
