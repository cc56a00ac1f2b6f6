// Package cluster implements incremental online clustering of embedded
// articles into events. Each unassigned article is compared against the
// current event centroids; it joins the best match above the similarity
// threshold or founds a new event.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/TobiSchelling/NewsEvents/internal/database"
	"github.com/TobiSchelling/NewsEvents/internal/vectormath"
)

// DefaultSimilarityThreshold is the minimum cosine similarity for an
// article to join an existing event instead of founding a new one.
const DefaultSimilarityThreshold = 0.75

// Repository is the storage contract the engine needs. *database.DB
// satisfies it.
type Repository interface {
	GetAllEvents() ([]database.Event, error)
	GetUnclusteredEmbeddedArticles() ([]database.Article, error)
	GetEventArticles(eventID int64) ([]database.Article, error)
	CreateEventFromArticle(a *database.Article) (*database.Event, error)
	AssignArticleToEvent(articleID, eventID int64) error
	UpdateEventAggregates(eventID int64, centroid []float64, articleCount int, startTime, lastUpdate *time.Time) error
	GetInconsistentEventIDs() ([]int64, error)
}

// ArticleError records a per-article failure that did not halt the run.
type ArticleError struct {
	ArticleID int64
	Title     string
	Err       error
}

func (e ArticleError) Error() string {
	return fmt.Sprintf("article %d (%q): %v", e.ArticleID, e.Title, e.Err)
}

func (e ArticleError) Unwrap() error { return e.Err }

// Result holds the statistics of a clustering run. When Errors is
// non-empty, the counters cover only the articles that were processed
// successfully.
type Result struct {
	TotalProcessed     int
	AssignedToExisting int
	NewEventsCreated   int
	Errors             []ArticleError
}

// Engine assigns unclustered articles to events, one article at a time.
type Engine struct {
	repo      Repository
	threshold float64
}

// NewEngine creates a clustering engine. The threshold is honored across
// the full cosine range (-1, 1), including zero and negative values; only
// a value outside that interval, or NaN, falls back to
// DefaultSimilarityThreshold.
func NewEngine(repo Repository, threshold float64) *Engine {
	if threshold <= -1 || threshold >= 1 || math.IsNaN(threshold) {
		threshold = DefaultSimilarityThreshold
	}
	return &Engine{repo: repo, threshold: threshold}
}

// Threshold returns the similarity threshold the engine runs with.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Run clusters all unassigned embedded articles. Articles are processed
// strictly one at a time: each article's assignment is committed before the
// next article is matched, so an event founded mid-run immediately attracts
// the similar articles that follow it. Parallelizing this loop would let
// two near-identical articles race past each other's centroid updates and
// spawn duplicate events.
//
// Malformed vectors fail only the offending article and are collected in
// Result.Errors. Storage errors abort the run; the returned Result then
// covers the articles committed before the failure, all of which left the
// store self-consistent.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	// An interrupted previous run may have committed an assignment without
	// its centroid update. Restore the invariant before matching anything
	// against the centroids.
	if err := e.repairInconsistentEvents(); err != nil {
		return result, err
	}

	articles, err := e.repo.GetUnclusteredEmbeddedArticles()
	if err != nil {
		return result, err
	}
	if len(articles) == 0 {
		log.Println("No unclustered articles")
		return result, nil
	}

	log.Printf("Clustering %d articles (threshold %.2f)...", len(articles), e.threshold)

	for i := range articles {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		article := &articles[i]
		if err := e.processArticle(article, result); err != nil {
			if isVectorError(err) {
				log.Printf("Skipping article %d (%q): %v", article.ID, article.Title, err)
				result.Errors = append(result.Errors, ArticleError{
					ArticleID: article.ID,
					Title:     article.Title,
					Err:       err,
				})
				continue
			}
			return result, fmt.Errorf("article %d: %w", article.ID, err)
		}
		result.TotalProcessed++
	}

	log.Printf("Clustering complete: %d processed, %d assigned, %d new events, %d failed",
		result.TotalProcessed, result.AssignedToExisting, result.NewEventsCreated, len(result.Errors))

	return result, nil
}

// processArticle runs the match-decide-assign-recompute sequence for one
// article. The event list is re-read on every call so assignments made
// earlier in the same run are visible.
func (e *Engine) processArticle(article *database.Article, result *Result) error {
	// Reject malformed embeddings before they can seed an event: a
	// zero-magnitude centroid would poison every later similarity check.
	if err := vectormath.Validate(article.Embedding); err != nil {
		return err
	}

	events, err := e.repo.GetAllEvents()
	if err != nil {
		return err
	}

	match, err := FindBestMatch(article.Embedding, events, e.threshold)
	if err != nil {
		return err
	}

	if match != nil {
		if err := e.repo.AssignArticleToEvent(article.ID, match.EventID); err != nil {
			return err
		}
		if err := e.recomputeEvent(match.EventID); err != nil {
			return err
		}
		result.AssignedToExisting++
		log.Printf("Assigned %q to event %d (similarity %.3f)", article.Title, match.EventID, match.Score)
		return nil
	}

	event, err := e.repo.CreateEventFromArticle(article)
	if err != nil {
		return err
	}
	result.NewEventsCreated++
	log.Printf("Created event %d: %q", event.ID, article.Title)
	return nil
}

// isVectorError reports whether err is a per-article vector defect rather
// than a storage failure.
func isVectorError(err error) bool {
	return errors.Is(err, vectormath.ErrDimensionMismatch) ||
		errors.Is(err, vectormath.ErrDegenerateVector) ||
		errors.Is(err, vectormath.ErrEmptyInput)
}
