package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrArticleAlreadyAssigned is returned when an assignment targets an
// article that already belongs to an event. Assignments are append-only:
// the engine never moves an article between events.
var ErrArticleAlreadyAssigned = errors.New("article already assigned to an event")

const eventColumns = `id, title, summary, start_time, last_update, centroid, article_count, created_at`

// GetAllEvents returns every event with its decoded centroid, ordered by
// ascending id. The matcher relies on this ordering for deterministic
// tie-breaks.
func (db *DB) GetAllEvents() ([]Event, error) {
	rows, err := db.conn.Query(`SELECT ` + eventColumns + ` FROM events ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetEventsByRecency returns events ordered by last_update descending,
// for display.
func (db *DB) GetEventsByRecency() ([]Event, error) {
	rows, err := db.conn.Query(
		`SELECT ` + eventColumns + ` FROM events ORDER BY last_update DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetEventByID returns a single event by ID, or nil if not found.
func (db *DB) GetEventByID(eventID int64) (*Event, error) {
	row := db.conn.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, eventID)
	e, err := scanEventInto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetEventArticles returns the articles currently assigned to an event.
func (db *DB) GetEventArticles(eventID int64) ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT `+articleColumns+` FROM articles WHERE event_id = ? ORDER BY id`, eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// CreateEventFromArticle creates a new event seeded from the given article
// and assigns the article to it in the same transaction. The new event's
// title and centroid come from the founding article; summary is left empty
// for external summarization.
func (db *DB) CreateEventFromArticle(a *Article) (*Event, error) {
	if len(a.Embedding) == 0 {
		return nil, fmt.Errorf("article %d has no embedding", a.ID)
	}
	centroid, err := marshalVector(a.Embedding)
	if err != nil {
		return nil, err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	published := formatTime(a.PublishedAt)
	result, err := tx.Exec(
		`INSERT INTO events (title, summary, start_time, last_update, centroid, article_count)
		VALUES (?, '', ?, ?, ?, 1)`,
		a.Title, published, published, centroid,
	)
	if err != nil {
		return nil, err
	}
	eventID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	assigned, err := tx.Exec(
		"UPDATE articles SET event_id = ? WHERE id = ? AND event_id IS NULL",
		eventID, a.ID,
	)
	if err != nil {
		return nil, err
	}
	if n, err := assigned.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, fmt.Errorf("article %d: %w", a.ID, ErrArticleAlreadyAssigned)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &Event{
		ID:           eventID,
		Title:        a.Title,
		StartTime:    a.PublishedAt,
		LastUpdate:   a.PublishedAt,
		Centroid:     a.Embedding,
		ArticleCount: 1,
	}, nil
}

// AssignArticleToEvent sets an article's event reference. The assignment is
// append-only: articles already belonging to an event are never moved.
func (db *DB) AssignArticleToEvent(articleID, eventID int64) error {
	result, err := db.conn.Exec(
		"UPDATE articles SET event_id = ? WHERE id = ? AND event_id IS NULL",
		eventID, articleID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("article %d: %w", articleID, ErrArticleAlreadyAssigned)
	}
	return nil
}

// UpdateEventAggregates writes a recomputed centroid together with the
// derived article count and time range as a single atomic update.
func (db *DB) UpdateEventAggregates(eventID int64, centroid []float64, articleCount int, startTime, lastUpdate *time.Time) error {
	encoded, err := marshalVector(centroid)
	if err != nil {
		return err
	}
	result, err := db.conn.Exec(
		`UPDATE events SET centroid = ?, article_count = ?, start_time = ?, last_update = ?
		WHERE id = ?`,
		encoded, articleCount, formatTime(startTime), formatTime(lastUpdate), eventID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("event %d not found", eventID)
	}
	return nil
}

// GetInconsistentEventIDs returns events whose stored article_count disagrees
// with the true member count. A non-empty result means a previous run was
// interrupted between assignment and centroid recomputation.
func (db *DB) GetInconsistentEventIDs() ([]int64, error) {
	rows, err := db.conn.Query(
		`SELECT e.id FROM events e
		WHERE e.article_count != (SELECT COUNT(*) FROM articles a WHERE a.event_id = e.id)
		ORDER BY e.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanEventInto(s rowScanner) (*Event, error) {
	var e Event
	var start, last *string
	var centroid string
	if err := s.Scan(&e.ID, &e.Title, &e.Summary, &start, &last,
		&centroid, &e.ArticleCount, &e.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if e.StartTime, err = parseTime(start); err != nil {
		return nil, fmt.Errorf("event %d: %w", e.ID, err)
	}
	if e.LastUpdate, err = parseTime(last); err != nil {
		return nil, fmt.Errorf("event %d: %w", e.ID, err)
	}
	if e.Centroid, err = unmarshalVector(&centroid); err != nil {
		return nil, fmt.Errorf("event %d: %w", e.ID, err)
	}
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		e, err := scanEventInto(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
