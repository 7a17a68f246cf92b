package repositories

import (
	"context"
)

// VectorIndex defines the interface for nearest-neighbor queries against the
// review index. This abstracts the Pinecone client and allows for easy
// testing and implementation swapping.
type VectorIndex interface {
	// Query returns up to topK matches for the given embedding, ordered by
	// descending similarity exactly as the index service returned them.
	// An empty namespace falls back to the index default. A nil filter
	// searches the whole namespace.
	Query(ctx context.Context, vector []float32, topK int, namespace string, filter map[string]interface{}) ([]*Match, error)

	// Stats returns vector counts for the index.
	Stats(ctx context.Context) (*IndexInfo, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error
}

// ReviewMetadata is the metadata stored alongside every review vector.
// All three fields are required; a match missing any of them is treated as a
// malformed index response, not silently passed downstream.
type ReviewMetadata struct {
	Review  string  `json:"review"`
	Subject string  `json:"subject"`
	Stars   float64 `json:"stars"`
}

// Match is a single retrieval result.
type Match struct {
	ID       string         `json:"id"`    // Professor identifier
	Score    float32        `json:"score"` // Similarity score (higher is more similar)
	Metadata ReviewMetadata `json:"metadata"`
}

// IndexInfo describes the index contents.
type IndexInfo struct {
	Dimension        int            `json:"dimension"`
	TotalVectorCount int            `json:"total_vector_count"`
	NamespaceCounts  map[string]int `json:"namespace_counts"`
}

// RetrievalError represents errors from the vector index boundary
type RetrievalError struct {
	Operation string
	Err       error
	Message   string
}

func (e *RetrievalError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// NewRetrievalError creates a new retrieval error
func NewRetrievalError(operation string, err error, message string) *RetrievalError {
	return &RetrievalError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}

// MalformedMatchError flags an index response whose metadata is incomplete.
func MalformedMatchError(id string, detail string) error {
	return NewRetrievalError(
		"query",
		nil,
		"malformed match "+id+": "+detail,
	)
}
