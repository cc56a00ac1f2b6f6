package database

import (
	"encoding/json"
	"fmt"
	"time"
)

// Vectors are persisted as JSON arrays in TEXT columns so they round-trip
// exactly as an ordered sequence of floats.

func marshalVector(v []float64) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding vector: %w", err)
	}
	return string(data), nil
}

func unmarshalVector(s *string) ([]float64, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	var v []float64
	if err := json.Unmarshal([]byte(*s), &v); err != nil {
		return nil, fmt.Errorf("decoding vector: %w", err)
	}
	return v, nil
}

// Timestamps are persisted as RFC 3339 UTC strings.

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func parseTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", *s, err)
	}
	return &t, nil
}
