package database

import "database/sql"

// InsertRunReport records the start of a pipeline run.
func (db *DB) InsertRunReport(runID string) error {
	_, err := db.conn.Exec(
		"INSERT INTO run_reports (run_id) VALUES (?)", runID,
	)
	return err
}

// FinishRunReport stores the final counters for a pipeline run.
func (db *DB) FinishRunReport(runID string, collected, embedded, eventsCreated, assigned int) error {
	_, err := db.conn.Exec(
		`UPDATE run_reports SET finished_at = datetime('now'),
		articles_collected = ?, articles_embedded = ?, events_created = ?, articles_assigned = ?
		WHERE run_id = ?`,
		collected, embedded, eventsCreated, assigned, runID,
	)
	return err
}

// GetLastRunReport returns the most recent run report, or nil if none exists.
func (db *DB) GetLastRunReport() (*RunReport, error) {
	row := db.conn.QueryRow(
		`SELECT id, run_id, started_at, finished_at,
		articles_collected, articles_embedded, events_created, articles_assigned
		FROM run_reports ORDER BY id DESC LIMIT 1`,
	)

	var r RunReport
	err := row.Scan(&r.ID, &r.RunID, &r.StartedAt, &r.FinishedAt,
		&r.ArticlesCollected, &r.ArticlesEmbedded, &r.EventsCreated, &r.ArticlesAssigned)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
