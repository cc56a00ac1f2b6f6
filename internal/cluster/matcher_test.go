package cluster

import (
	"errors"
	"math"
	"testing"

	"github.com/TobiSchelling/NewsEvents/internal/database"
	"github.com/TobiSchelling/NewsEvents/internal/vectormath"
)

func TestFindBestMatchNoEvents(t *testing.T) {
	match, err := FindBestMatch([]float64{1, 0}, nil, 0.75)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Errorf("expected no match, got event %d", match.EventID)
	}
}

func TestFindBestMatchPicksHighestScore(t *testing.T) {
	events := []database.Event{
		{ID: 1, Centroid: []float64{0, 1}},
		{ID: 2, Centroid: []float64{0.7, 0.7}},
		{ID: 3, Centroid: []float64{1, 0}},
	}

	match, err := FindBestMatch([]float64{1, 0.1}, events, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.EventID != 3 {
		t.Errorf("expected event 3, got %d", match.EventID)
	}
}

func TestFindBestMatchThresholdIsExclusive(t *testing.T) {
	// Centroid at 45 degrees from the query: similarity is exactly cos(45°).
	events := []database.Event{{ID: 1, Centroid: []float64{1, 1}}}
	query := []float64{1, 0}
	threshold := math.Sqrt2 / 2

	score, err := vectormath.CosineSimilarity(query, events[0].Centroid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(score-threshold) > 1e-12 {
		t.Fatalf("test setup: expected similarity %f, got %f", threshold, score)
	}

	match, err := FindBestMatch(query, events, score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Error("score exactly at threshold must not match")
	}

	match, err = FindBestMatch(query, events, score-1e-9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil {
		t.Error("score one epsilon above threshold must match")
	}
}

func TestFindBestMatchTieGoesToFirstEvent(t *testing.T) {
	// Two events with identical centroids tie exactly; the first in the
	// supplied order (lowest id, per GetAllEvents) wins.
	events := []database.Event{
		{ID: 5, Centroid: []float64{1, 0}},
		{ID: 9, Centroid: []float64{1, 0}},
	}

	match, err := FindBestMatch([]float64{1, 0}, events, 0.75)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.EventID != 5 {
		t.Errorf("expected tie to resolve to event 5, got %d", match.EventID)
	}
}

func TestFindBestMatchDimensionMismatch(t *testing.T) {
	events := []database.Event{{ID: 1, Centroid: []float64{1, 0}}}
	if _, err := FindBestMatch([]float64{1, 0, 0}, events, 0.75); !errors.Is(err, vectormath.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestFindBestMatchDegenerateCentroid(t *testing.T) {
	events := []database.Event{{ID: 1, Centroid: []float64{0, 0}}}
	if _, err := FindBestMatch([]float64{1, 0}, events, 0.75); !errors.Is(err, vectormath.ErrDegenerateVector) {
		t.Errorf("expected ErrDegenerateVector, got %v", err)
	}
}
