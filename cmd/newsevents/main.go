package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/NewsEvents/internal/cluster"
	"github.com/TobiSchelling/NewsEvents/internal/collect"
	"github.com/TobiSchelling/NewsEvents/internal/config"
	"github.com/TobiSchelling/NewsEvents/internal/database"
	"github.com/TobiSchelling/NewsEvents/internal/embedding"
	"github.com/TobiSchelling/NewsEvents/internal/fetch"
	"github.com/TobiSchelling/NewsEvents/internal/pipeline"
	"github.com/TobiSchelling/NewsEvents/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "newsevents",
	Short:   "Incremental news event clustering",
	Long:    "NewsEvents collects news articles, embeds them, and incrementally clusters them into ongoing events.",
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
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("newsevents", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/newsevents/",
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
		fmt.Println("Edit it to configure feeds, the embedding backend, and the clustering threshold.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Articles:")
		fmt.Printf("  Total collected: %d\n", stats.TotalArticles)
		fmt.Printf("  Embedded: %d\n", stats.EmbeddedArticles)
		fmt.Printf("  Clustered: %d\n", stats.ClusteredArticles)
		fmt.Println("\nEvents:")
		fmt.Printf("  Total: %d\n", stats.Events)
		fmt.Println("\nRuns:")
		fmt.Printf("  Total: %d\n", stats.Runs)

		if report, err := db.GetLastRunReport(); err == nil && report != nil {
			fmt.Println("\nLast run:")
			fmt.Printf("  ID: %s\n", report.RunID)
			if report.FinishedAt != nil {
				fmt.Printf("  Finished: %s\n", *report.FinishedAt)
			}
			fmt.Printf("  Collected %d, embedded %d, created %d events, assigned %d articles\n",
				report.ArticlesCollected, report.ArticlesEmbedded,
				report.EventsCreated, report.ArticlesAssigned)
		}
		return nil
	},
}

// --- collect command ---

var collectDaysBack int

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect articles from configured feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Collecting articles from feeds...")

		collector := collect.NewCollector(cfg, db, collectDaysBack)
		result := collector.Collect()

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Total found: %d\n", result.TotalFound)
		fmt.Printf("  New articles: %d\n", result.NewArticles)
		fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)
		return nil
	},
}

func init() {
	collectCmd.Flags().IntVar(&collectDaysBack, "days-back", 1, "Only keep articles published within this many days")
}

// --- fetch command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch full text for collected articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fetcher := fetch.NewContentFetcher(db, 15*time.Second)
		result := fetcher.FetchMissingContent()

		fmt.Printf("\nFetched %d articles, %d failed\n", result.Fetched, result.Failed)
		return nil
	},
}

// --- embed command ---

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate embeddings for articles that lack one",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		embedder := embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.OllamaURL)
		if !embedder.IsConfigured() {
			return fmt.Errorf("ollama is not reachable at %s or model %q is missing",
				cfg.Embedding.OllamaURL, cfg.Embedding.Model)
		}

		gen := embedding.NewGenerator(db, embedder)
		result, err := gen.EmbedPending(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("\nGenerated %d embeddings\n", result.Embedded)
		return nil
	},
}

// --- cluster command ---

var clusterThreshold float64

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster embedded articles into events",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		threshold := cfg.Clustering.SimilarityThreshold
		if cmd.Flags().Changed("threshold") {
			if clusterThreshold <= -1 || clusterThreshold >= 1 {
				return fmt.Errorf("--threshold must be in (-1, 1), got %v", clusterThreshold)
			}
			threshold = clusterThreshold
		}

		engine := cluster.NewEngine(db, threshold)
		result, err := engine.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("\nClustering complete:")
		fmt.Printf("  Processed: %d\n", result.TotalProcessed)
		fmt.Printf("  Assigned to existing events: %d\n", result.AssignedToExisting)
		fmt.Printf("  New events created: %d\n", result.NewEventsCreated)
		if len(result.Errors) > 0 {
			fmt.Printf("  Skipped: %d\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("    article %d (%s): %v\n", e.ArticleID, e.Title, e.Err)
			}
		}
		return nil
	},
}

func init() {
	clusterCmd.Flags().Float64Var(&clusterThreshold, "threshold", 0, "Similarity threshold override in (-1, 1)")
}

// --- run command ---

var (
	dryRun   bool
	daysBack int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: collect -> fetch -> embed -> cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg, db)

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun()
		} else {
			result = pipe.Run(cmd.Context(), daysBack)
		}

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if !dryRun {
			fmt.Println("\nPipeline complete! Run 'newsevents serve' to browse events.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	runCmd.Flags().IntVar(&daysBack, "days-back", 1, "Only keep articles published within this many days")
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
		if !cmd.Flags().Changed("port") && cfg.Server.Port != 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "newsevents.db")
	return database.Open(dbPath)
}
