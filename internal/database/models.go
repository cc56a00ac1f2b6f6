package database

import "time"

// Article represents a collected news article. Embedding is nil until the
// embedding step has run; EventID is nil until the clustering engine assigns
// the article to an event.
type Article struct {
	ID             int64
	URL            string
	Title          string
	Source         *string
	PublishedAt    *time.Time
	FullText       *string
	Embedding      []float64
	EventID        *int64
	FetchAttempted bool
	CollectedAt    *string
}

// Event is a cluster of articles describing the same real-world happening.
// Centroid is the arithmetic mean of the member articles' embeddings;
// ArticleCount is re-derived from the member list on every recomputation.
type Event struct {
	ID           int64
	Title        string
	Summary      string
	StartTime    *time.Time
	LastUpdate   *time.Time
	Centroid     []float64
	ArticleCount int
	CreatedAt    *string
}

// RunReport holds metadata about one pipeline run.
type RunReport struct {
	ID                int64
	RunID             string
	StartedAt         *string
	FinishedAt        *string
	ArticlesCollected int
	ArticlesEmbedded  int
	EventsCreated     int
	ArticlesAssigned  int
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalArticles     int
	EmbeddedArticles  int
	ClusteredArticles int
	Events            int
	Runs              int
}
