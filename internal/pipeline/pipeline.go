package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/TobiSchelling/NewsEvents/internal/cluster"
	"github.com/TobiSchelling/NewsEvents/internal/collect"
	"github.com/TobiSchelling/NewsEvents/internal/config"
	"github.com/TobiSchelling/NewsEvents/internal/database"
	"github.com/TobiSchelling/NewsEvents/internal/embedding"
	"github.com/TobiSchelling/NewsEvents/internal/fetch"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	RunID string
	Steps []StepResult
}

// Pipeline orchestrates the collect -> fetch -> embed -> cluster pipeline.
type Pipeline struct {
	cfg      *config.Config
	db       *database.DB
	embedder embedding.Embedder
}

// New creates a new pipeline.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	model := cfg.Embedding.Model
	if model == "" {
		model = "nomic-embed-text"
	}
	baseURL := cfg.Embedding.OllamaURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	return &Pipeline{
		cfg:      cfg,
		db:       db,
		embedder: embedding.NewOllamaEmbedder(model, baseURL),
	}
}

// Run executes the full pipeline and records a run report.
func (p *Pipeline) Run(ctx context.Context, daysBack int) *Result {
	r := &Result{RunID: uuid.NewString()}

	if err := p.db.InsertRunReport(r.RunID); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Start", Err: err})
		return r
	}

	var collected, embedded, eventsCreated, assigned int

	// Step 1: Collect
	step, collectResult := p.runCollect(daysBack)
	r.Steps = append(r.Steps, step)
	if step.Err == nil {
		collected = collectResult.NewArticles
	}

	// Step 2: Fetch content
	r.Steps = append(r.Steps, p.runFetch())

	// Step 3: Embed
	step, embedResult := p.runEmbed(ctx)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		p.finishReport(r.RunID, collected, embedded, eventsCreated, assigned)
		return r
	}
	embedded = embedResult.Embedded

	// Step 4: Cluster
	step, clusterResult := p.runCluster(ctx)
	r.Steps = append(r.Steps, step)
	if clusterResult != nil {
		eventsCreated = clusterResult.NewEventsCreated
		assigned = clusterResult.AssignedToExisting
	}

	p.finishReport(r.RunID, collected, embedded, eventsCreated, assigned)
	return r
}

// DryRun shows what would be done without executing.
func (p *Pipeline) DryRun() *Result {
	r := &Result{}

	r.Steps = append(r.Steps, StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("[dry-run] Would poll %d feeds", len(p.cfg.Sources.Feeds)),
	})

	needing, _ := p.db.GetArticlesNeedingFetch()
	r.Steps = append(r.Steps, StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("[dry-run] %d articles need content fetching", len(needing)),
	})

	missing, _ := p.db.GetArticlesWithoutEmbedding()
	r.Steps = append(r.Steps, StepResult{
		Name:    "Embed",
		Summary: fmt.Sprintf("[dry-run] %d articles need embeddings", len(missing)),
	})

	pending, _ := p.db.GetUnclusteredEmbeddedArticles()
	r.Steps = append(r.Steps, StepResult{
		Name:    "Cluster",
		Summary: fmt.Sprintf("[dry-run] %d articles ready to cluster", len(pending)),
	})

	return r
}

func (p *Pipeline) runCollect(daysBack int) (StepResult, *collect.Result) {
	log.Println("Step 1/4: Collecting articles...")
	collector := collect.NewCollector(p.cfg, p.db, daysBack)
	result := collector.Collect()
	return StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("Found %d new articles (%d total, %d duplicates)", result.NewArticles, result.TotalFound, result.Duplicates),
	}, result
}

func (p *Pipeline) runFetch() StepResult {
	log.Println("Step 2/4: Fetching article content...")
	fetcher := fetch.NewContentFetcher(p.db, 15*time.Second)
	result := fetcher.FetchMissingContent()
	return StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("Fetched %d articles, %d failed", result.Fetched, result.Failed),
	}
}

func (p *Pipeline) runEmbed(ctx context.Context) (StepResult, *embedding.Result) {
	log.Println("Step 3/4: Generating embeddings...")
	gen := embedding.NewGenerator(p.db, p.embedder)
	result, err := gen.EmbedPending(ctx)
	if err != nil {
		return StepResult{Name: "Embed", Err: err}, result
	}
	return StepResult{
		Name:    "Embed",
		Summary: fmt.Sprintf("Generated %d embeddings", result.Embedded),
	}, result
}

func (p *Pipeline) runCluster(ctx context.Context) (StepResult, *cluster.Result) {
	log.Println("Step 4/4: Clustering into events...")
	engine := cluster.NewEngine(p.db, p.cfg.Clustering.SimilarityThreshold)
	result, err := engine.Run(ctx)
	if err != nil {
		return StepResult{Name: "Cluster", Err: err}, result
	}
	summary := fmt.Sprintf("Processed %d articles: %d assigned, %d new events", result.TotalProcessed, result.AssignedToExisting, result.NewEventsCreated)
	if len(result.Errors) > 0 {
		summary += fmt.Sprintf(", %d skipped", len(result.Errors))
	}
	return StepResult{Name: "Cluster", Summary: summary}, result
}

func (p *Pipeline) finishReport(runID string, collected, embedded, eventsCreated, assigned int) {
	if err := p.db.FinishRunReport(runID, collected, embedded, eventsCreated, assigned); err != nil {
		log.Printf("Failed to record run report: %v", err)
	}
}
