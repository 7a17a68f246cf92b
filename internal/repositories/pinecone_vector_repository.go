package repositories

import (
	"context"
	"fmt"

	"profadvisor/internal/db"
)

// PineconeVectorIndex implements VectorIndex using a Pinecone serverless index
type PineconeVectorIndex struct {
	client *db.PineconeClient
}

// NewPineconeVectorIndex creates a new Pinecone-backed vector index
func NewPineconeVectorIndex(client *db.PineconeClient) VectorIndex {
	return &PineconeVectorIndex{
		client: client,
	}
}

// Query performs a nearest-neighbor search. Results are returned in the order
// the index service produced them; the repository never re-sorts. Zero and
// partial result sets are valid responses, not errors.
func (r *PineconeVectorIndex) Query(ctx context.Context, vector []float32, topK int, namespace string, filter map[string]interface{}) ([]*Match, error) {
	if topK <= 0 {
		return nil, NewRetrievalError("query", nil, fmt.Sprintf("topK must be positive, got %d", topK))
	}
	if len(vector) == 0 {
		return nil, NewRetrievalError("query", nil, "query vector is empty")
	}

	resp, err := r.client.Query(ctx, db.QueryRequest{
		Namespace:       namespace,
		TopK:            topK,
		Vector:          vector,
		Filter:          filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, NewRetrievalError("query", err, "")
	}

	matches := make([]*Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		meta, err := parseReviewMetadata(m.ID, m.Metadata)
		if err != nil {
			return nil, err
		}
		matches = append(matches, &Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: meta,
		})
	}

	return matches, nil
}

// Stats returns vector counts for the index
func (r *PineconeVectorIndex) Stats(ctx context.Context) (*IndexInfo, error) {
	stats, err := r.client.DescribeIndexStats(ctx)
	if err != nil {
		return nil, NewRetrievalError("stats", err, "")
	}

	counts := make(map[string]int, len(stats.Namespaces))
	for ns, info := range stats.Namespaces {
		counts[ns] = info.VectorCount
	}

	return &IndexInfo{
		Dimension:        stats.Dimension,
		TotalVectorCount: stats.TotalVectorCount,
		NamespaceCounts:  counts,
	}, nil
}

// Ping checks index connectivity
func (r *PineconeVectorIndex) Ping(ctx context.Context) error {
	if err := r.client.Heartbeat(ctx); err != nil {
		return NewRetrievalError("ping", err, "")
	}
	return nil
}

// parseReviewMetadata validates the raw metadata map at the boundary so a
// half-populated index entry fails loudly here instead of downstream.
func parseReviewMetadata(id string, raw map[string]interface{}) (ReviewMetadata, error) {
	var meta ReviewMetadata

	if raw == nil {
		return meta, MalformedMatchError(id, "metadata missing")
	}

	review, ok := raw["review"].(string)
	if !ok || review == "" {
		return meta, MalformedMatchError(id, "missing review text")
	}

	subject, ok := raw["subject"].(string)
	if !ok || subject == "" {
		return meta, MalformedMatchError(id, "missing subject")
	}

	// JSON numbers decode as float64; an int shows up only from
	// hand-constructed metadata maps.
	var stars float64
	switch v := raw["stars"].(type) {
	case float64:
		stars = v
	case int:
		stars = float64(v)
	default:
		return meta, MalformedMatchError(id, "missing stars rating")
	}

	meta.Review = review
	meta.Subject = subject
	meta.Stars = stars
	return meta, nil
}
