package embedding

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/TobiSchelling/NewsEvents/internal/database"
)

// mockEmbedder returns a fixed vector per input, recording calls.
type mockEmbedder struct {
	calls int
	fail  bool
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	m.calls++
	if m.fail {
		return nil, fmt.Errorf("backend down")
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{float64(len(texts[i])), 1}
	}
	return out, nil
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEmbedPendingNothingToDo(t *testing.T) {
	db := openTestDB(t)
	gen := NewGenerator(db, &mockEmbedder{})

	result, err := gen.EmbedPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Embedded != 0 {
		t.Errorf("expected 0 embedded, got %d", result.Embedded)
	}
}

func TestEmbedPendingEmbedsOnlyMissing(t *testing.T) {
	db := openTestDB(t)
	a1, _ := db.InsertArticle("https://a.com", "Already done", nil, nil, nil)
	db.UpdateArticleEmbedding(a1, []float64{1, 0})
	a2, _ := db.InsertArticle("https://b.com", "Pending", nil, nil, nil)

	gen := NewGenerator(db, &mockEmbedder{})
	result, err := gen.EmbedPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Embedded != 1 {
		t.Errorf("expected 1 embedded, got %d", result.Embedded)
	}

	article, _ := db.GetArticleByID(a2)
	if article.Embedding == nil {
		t.Error("expected embedding to be stored")
	}

	// A second run has nothing left to embed.
	result, _ = gen.EmbedPending(context.Background())
	if result.Embedded != 0 {
		t.Errorf("expected 0 on second run, got %d", result.Embedded)
	}
}

func TestEmbedPendingBatches(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < batchSize+5; i++ {
		db.InsertArticle(fmt.Sprintf("https://example.com/%d", i), fmt.Sprintf("Story %d", i), nil, nil, nil)
	}

	m := &mockEmbedder{}
	gen := NewGenerator(db, m)
	result, err := gen.EmbedPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Embedded != batchSize+5 {
		t.Errorf("expected %d embedded, got %d", batchSize+5, result.Embedded)
	}
	if m.calls != 2 {
		t.Errorf("expected 2 batch calls, got %d", m.calls)
	}
}

func TestEmbedPendingBackendFailure(t *testing.T) {
	db := openTestDB(t)
	db.InsertArticle("https://a.com", "Story", nil, nil, nil)

	gen := NewGenerator(db, &mockEmbedder{fail: true})
	if _, err := gen.EmbedPending(context.Background()); err == nil {
		t.Error("expected error when backend fails")
	}
}
