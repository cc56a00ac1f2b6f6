package embedding

import (
	"context"
	"fmt"
	"log"

	"github.com/TobiSchelling/NewsEvents/internal/database"
)

const batchSize = 32

// Result holds the results of an embedding run.
type Result struct {
	Embedded int
}

// Generator embeds articles that have no embedding yet. The embedder is an
// injected collaborator owned by the caller; its lifecycle (connect once,
// reuse, release) is not managed here.
type Generator struct {
	db       *database.DB
	embedder Embedder
}

// NewGenerator creates a new embedding generator.
func NewGenerator(db *database.DB, embedder Embedder) *Generator {
	return &Generator{db: db, embedder: embedder}
}

// EmbedPending embeds all articles without an embedding, in batches.
// Each article is embedded exactly once, from its title.
func (g *Generator) EmbedPending(ctx context.Context) (*Result, error) {
	articles, err := g.db.GetArticlesWithoutEmbedding()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if len(articles) == 0 {
		log.Println("No articles need embedding")
		return result, nil
	}

	log.Printf("Generating embeddings for %d articles...", len(articles))

	for start := 0; start < len(articles); start += batchSize {
		end := start + batchSize
		if end > len(articles) {
			end = len(articles)
		}
		batch := articles[start:end]

		titles := make([]string, len(batch))
		for i, a := range batch {
			titles[i] = a.Title
		}

		vectors, err := g.embedder.Embed(ctx, titles)
		if err != nil {
			return result, fmt.Errorf("embedding batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return result, fmt.Errorf("embedder returned %d vectors for %d titles", len(vectors), len(batch))
		}

		for i, a := range batch {
			if err := g.db.UpdateArticleEmbedding(a.ID, vectors[i]); err != nil {
				return result, fmt.Errorf("storing embedding for article %d: %w", a.ID, err)
			}
			result.Embedded++
		}
	}

	log.Printf("Generated %d embeddings", result.Embedded)
	return result, nil
}
