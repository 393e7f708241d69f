package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrossiello/profilelens/internal/config"
	"github.com/mrossiello/profilelens/internal/database"
	"github.com/mrossiello/profilelens/internal/embedding"
	"github.com/mrossiello/profilelens/internal/refine"
	"github.com/mrossiello/profilelens/internal/report"
	"github.com/mrossiello/profilelens/internal/server"
	"github.com/mrossiello/profilelens/internal/similarity"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "profilelens",
	Short:   "Data profile similarity and refinement",
	Long:    "ProfileLens scores Croissant-style data profiles for pairwise similarity and refines promising pairs into structural comparison reports.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(refineCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("profilelens", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/profilelens/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the profile folder, weights, and embedding models.")
		return nil
	},
}

// --- status command ---

var clearCache bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if clearCache {
			removed, err := db.ClearCache()
			if err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Printf("Cleared %d cached result(s).\n", removed)
			return nil
		}

		stats, err := db.GetCacheStats()
		if err != nil {
			return fmt.Errorf("getting cache stats: %w", err)
		}

		fmt.Println("Similarity cache:")
		fmt.Printf("  Entries: %d\n", stats.Entries)
		fmt.Printf("  Folders: %d\n", stats.Folders)
		if stats.Newest != "" {
			fmt.Printf("  Newest: %s\n", stats.Newest)
		}

		desc := embedding.NewOllamaEmbedder(cfg.Embedding.DescriptionModel, cfg.Embedding.OllamaURL)
		fmt.Println("\nEmbedding:")
		if desc.Available() {
			fmt.Printf("  Ollama reachable at %s\n", cfg.Embedding.OllamaURL)
		} else {
			fmt.Printf("  Ollama NOT reachable at %s\n", cfg.Embedding.OllamaURL)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Remove all cached similarity results")
}

// --- analyze command ---

var (
	saveReport  bool
	kwWeight    float64
	descWeight  float64
	headWeight  float64
	scThreshold float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [folder]",
	Short: "Score all profile pairs in a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, err := resolveFolder(args)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		weights, normalized := commandWeights(cmd)
		engine := newEngine(db)

		scores, fromCache, err := engine.Compute(context.Background(), folder, weights)
		if err != nil {
			return err
		}

		sort.SliceStable(scores, func(i, j int) bool {
			return scores[i].CombinedSimilarity > scores[j].CombinedSimilarity
		})

		if fromCache {
			fmt.Println("(cached results)")
		}
		fmt.Printf("%-28s %-28s %9s %9s %9s %9s  pass\n",
			"profile 1", "profile 2", "keywords", "descr", "headline", "combined")
		passing := 0
		for _, s := range scores {
			mark := " "
			if s.PassesThreshold {
				mark = "*"
				passing++
			}
			fmt.Printf("%-28s %-28s %8.2f%% %8.2f%% %8.2f%% %8.2f%%  %s\n",
				s.DataProfile1, s.DataProfile2,
				s.KeywordsSimilarity, s.DescriptionSimilarity,
				s.HeadlineSimilarity, s.CombinedSimilarity, mark)
		}
		fmt.Printf("\n%d pair(s), %d above threshold (%.1f%%).\n", len(scores), passing, weights.Threshold)

		if saveReport {
			doc := report.Build(folder, reportWeights(weights, normalized), scores)
			doc.FromCache = fromCache
			path := filepath.Join(cfg.GetDataDir(), "similarity_report.json")
			if err := writeJSONFile(path, doc); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", path)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&saveReport, "save", false, "Write the folder report to the data directory")
	addWeightFlags(analyzeCmd)
}

// --- report command ---

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report [folder]",
	Short: "Build the Croissant similarity report for a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, err := resolveFolder(args)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		weights, normalized := commandWeights(cmd)
		engine := newEngine(db)

		scores, fromCache, err := engine.Compute(context.Background(), folder, weights)
		if err != nil {
			return err
		}

		doc := report.Build(folder, reportWeights(weights, normalized), scores)
		doc.FromCache = fromCache

		if reportOut != "" {
			if err := writeJSONFile(reportOut, doc); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", reportOut)
			return nil
		}
		return printJSON(doc)
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "output", "o", "", "Write the report to a file instead of stdout")
	addWeightFlags(reportCmd)
}

// --- refine command ---

var (
	asProfile bool
	refineOut string
)

var refineCmd = &cobra.Command{
	Use:   "refine <folder> <profile1> <profile2>",
	Short: "Structurally compare two profiles",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := strings.TrimSpace(args[0])
		d1, d2 := args[1], args[2]

		rep, err := refine.Refine(folder, d1, d2)
		if err != nil {
			return err
		}

		var payload any = rep
		if asProfile {
			payload = refine.BuildRefinementProfile(rep)
		}

		if refineOut != "" {
			if err := writeJSONFile(refineOut, payload); err != nil {
				return err
			}
			fmt.Printf("Written to %s\n", refineOut)
			return nil
		}
		return printJSON(payload)
	},
}

func init() {
	refineCmd.Flags().BoolVar(&asProfile, "profile", false, "Emit the shareable refinement profile instead of the raw report")
	refineCmd.Flags().StringVarP(&refineOut, "output", "o", "", "Write the result to a file instead of stdout")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg, newEngine(db), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- helpers ---

func addWeightFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&kwWeight, "kw", 0, "Keyword weight (default from config)")
	cmd.Flags().Float64Var(&descWeight, "desc", 0, "Description weight (default from config)")
	cmd.Flags().Float64Var(&headWeight, "head", 0, "Headline weight (default from config)")
	cmd.Flags().Float64Var(&scThreshold, "th", 0, "Pass threshold percentage (default from config)")
}

// commandWeights merges weight flags over the configured defaults and
// normalizes the blend.
func commandWeights(cmd *cobra.Command) (similarity.Weights, bool) {
	w := similarity.Weights{
		Keywords:    cfg.Weights.Keywords,
		Description: cfg.Weights.Description,
		Headline:    cfg.Weights.Headline,
		Threshold:   cfg.Weights.Threshold,
	}
	if cmd.Flags().Changed("kw") {
		w.Keywords = kwWeight
	}
	if cmd.Flags().Changed("desc") {
		w.Description = descWeight
	}
	if cmd.Flags().Changed("head") {
		w.Headline = headWeight
	}
	if cmd.Flags().Changed("th") {
		w.Threshold = scThreshold
	}
	return w.Normalize()
}

func resolveFolder(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	if cfg.Profiles.Folder != "" {
		return cfg.Profiles.Folder, nil
	}
	return "", fmt.Errorf("no profile folder given; pass one as an argument or set profiles.folder in the config")
}

func reportWeights(w similarity.Weights, normalized bool) report.Weights {
	return report.Weights{
		Keywords:    w.Keywords,
		Description: w.Description,
		Headline:    w.Headline,
		Normalized:  normalized,
		Threshold:   w.Threshold,
	}
}

func newEngine(db *database.DB) *similarity.Engine {
	desc := embedding.NewOllamaEmbedder(cfg.Embedding.DescriptionModel, cfg.Embedding.OllamaURL)
	head := embedding.NewOllamaEmbedder(cfg.Embedding.HeadlineModel, cfg.Embedding.OllamaURL)
	return similarity.NewEngine(desc, head, db)
}

func printJSON(payload any) error {
	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func writeJSONFile(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "profilelens.db")
	return database.Open(dbPath)
}
