package cluster

import (
	"errors"
	"fmt"
	"time"

	"github.com/TobiSchelling/NewsEvents/internal/vectormath"
)

// ErrNoMembers indicates an event with zero member articles. Events are
// always created with a founding member and never emptied, so hitting this
// is an invariant violation, not a recoverable condition.
var ErrNoMembers = errors.New("event has no member articles")

// recomputeEvent re-derives an event's centroid, article count and time
// range from its current members and writes all four fields back as one
// atomic update.
func (e *Engine) recomputeEvent(eventID int64) error {
	members, err := e.repo.GetEventArticles(eventID)
	if err != nil {
		return err
	}

	embeddings := make([][]float64, 0, len(members))
	var startTime, lastUpdate *time.Time
	for i := range members {
		m := &members[i]
		if m.Embedding != nil {
			embeddings = append(embeddings, m.Embedding)
		}
		if m.PublishedAt == nil {
			continue
		}
		if startTime == nil || m.PublishedAt.Before(*startTime) {
			startTime = m.PublishedAt
		}
		if lastUpdate == nil || m.PublishedAt.After(*lastUpdate) {
			lastUpdate = m.PublishedAt
		}
	}

	if len(embeddings) == 0 {
		return fmt.Errorf("event %d: %w", eventID, ErrNoMembers)
	}

	centroid, err := vectormath.Mean(embeddings)
	if err != nil {
		return fmt.Errorf("event %d centroid: %w", eventID, err)
	}

	return e.repo.UpdateEventAggregates(eventID, centroid, len(members), startTime, lastUpdate)
}

// repairInconsistentEvents recomputes any event whose stored article_count
// disagrees with its true member count. This makes an interrupted
// assign-then-recompute sequence safe to resume: recomputation is
// idempotent, so re-running it restores the centroid invariant.
func (e *Engine) repairInconsistentEvents() error {
	ids, err := e.repo.GetInconsistentEventIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := e.recomputeEvent(id); err != nil {
			return fmt.Errorf("repairing event %d: %w", id, err)
		}
	}
	return nil
}
