// Package vectormath provides the vector operations the clustering engine
// relies on: cosine similarity and the componentwise mean.
package vectormath

import (
	"errors"
	"math"
)

var (
	// ErrDimensionMismatch indicates vectors of unequal or zero length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrDegenerateVector indicates a zero-magnitude vector, for which
	// cosine similarity is undefined.
	ErrDegenerateVector = errors.New("zero-magnitude vector")
	// ErrEmptyInput indicates an empty vector sequence.
	ErrEmptyInput = errors.New("no vectors")
)

// CosineSimilarity returns the cosine similarity of a and b in [-1, 1].
// Both vectors must have the same non-zero length. A zero-magnitude input
// is an error rather than a zero score: silently matching everything
// against a degenerate centroid would corrupt clustering.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, ErrDegenerateVector
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Validate checks that v is usable as an embedding or centroid: non-empty
// and of non-zero magnitude.
func Validate(v []float64) error {
	if len(v) == 0 {
		return ErrDimensionMismatch
	}
	for _, x := range v {
		if x != 0 {
			return nil
		}
	}
	return ErrDegenerateVector
}

// Mean returns the componentwise arithmetic mean of a non-empty sequence
// of equal-length vectors.
func Mean(vectors [][]float64) ([]float64, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyInput
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, ErrDimensionMismatch
	}

	mean := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, ErrDimensionMismatch
		}
		for i, x := range v {
			mean[i] += x
		}
	}

	n := float64(len(vectors))
	for i := range mean {
		mean[i] /= n
	}
	return mean, nil
}
