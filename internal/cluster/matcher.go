package cluster

import (
	"github.com/TobiSchelling/NewsEvents/internal/database"
	"github.com/TobiSchelling/NewsEvents/internal/vectormath"
)

// Match identifies the event an article should join and the similarity
// score that won.
type Match struct {
	EventID int64
	Score   float64
}

// FindBestMatch compares an embedding against every event centroid and
// returns the event with the highest cosine similarity strictly above
// threshold, or nil when no event qualifies. The threshold is exclusive:
// a score exactly equal to it does not match.
//
// Exact score ties resolve to the first event in the supplied order.
// GetAllEvents returns events by ascending id, so ties go to the oldest
// event.
//
// A malformed embedding (dimension mismatch, zero vector) is an error,
// never a silent non-match.
func FindBestMatch(embedding []float64, events []database.Event, threshold float64) (*Match, error) {
	var best *Match
	bestScore := -1.0

	for _, event := range events {
		score, err := vectormath.CosineSimilarity(embedding, event.Centroid)
		if err != nil {
			return nil, err
		}
		if score > threshold && score > bestScore {
			best = &Match{EventID: event.ID, Score: score}
			bestScore = score
		}
	}

	return best, nil
}
