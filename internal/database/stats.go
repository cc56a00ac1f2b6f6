package database

// GetStats returns aggregate counts for the status command.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM articles", &s.TotalArticles},
		{"SELECT COUNT(*) FROM articles WHERE embedding IS NOT NULL", &s.EmbeddedArticles},
		{"SELECT COUNT(*) FROM articles WHERE event_id IS NOT NULL", &s.ClusteredArticles},
		{"SELECT COUNT(*) FROM events", &s.Events},
		{"SELECT COUNT(*) FROM run_reports", &s.Runs},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, err
		}
	}
	return s, nil
}
