package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PineconeClient wraps HTTP calls to a Pinecone serverless index.
// The REST API is small enough that a direct wrapper is simpler and more
// predictable than pulling in a full SDK.
type PineconeClient struct {
	indexHost  string
	apiKey     string
	httpClient *http.Client
}

// PineconeConfig holds configuration for the Pinecone connection
type PineconeConfig struct {
	IndexHost string // e.g. "https://rag-abc123.svc.us-east-1.pinecone.io"
	APIKey    string
	Timeout   time.Duration
}

// QueryRequest is the body of a vector similarity query.
type QueryRequest struct {
	Namespace       string                 `json:"namespace,omitempty"`
	TopK            int                    `json:"topK"`
	Vector          []float32              `json:"vector"`
	Filter          map[string]interface{} `json:"filter,omitempty"`
	IncludeMetadata bool                   `json:"includeMetadata"`
}

// QueryMatch is a single nearest-neighbor result.
type QueryMatch struct {
	ID       string                 `json:"id"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

// QueryResponse is the response from a query request.
type QueryResponse struct {
	Matches   []QueryMatch `json:"matches"`
	Namespace string       `json:"namespace"`
}

// IndexStats describes the index contents, per namespace.
type IndexStats struct {
	Namespaces map[string]struct {
		VectorCount int `json:"vectorCount"`
	} `json:"namespaces"`
	Dimension        int `json:"dimension"`
	TotalVectorCount int `json:"totalVectorCount"`
}

// NewPineconeClient creates a new Pinecone client for a single index host
func NewPineconeClient(config PineconeConfig) *PineconeClient {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &PineconeClient{
		indexHost: config.IndexHost,
		apiKey:    config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// checkCredentials surfaces missing configuration as a connectivity failure
// with a usable diagnostic instead of an opaque 401 later.
func (c *PineconeClient) checkCredentials() error {
	if c.indexHost == "" {
		return fmt.Errorf("pinecone index host is not configured (set PINECONE_INDEX_HOST)")
	}
	if c.apiKey == "" {
		return fmt.Errorf("pinecone api key is not configured (set PINECONE_API_KEY)")
	}
	return nil
}

func (c *PineconeClient) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	if err := c.checkCredentials(); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.indexHost+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone %s failed (status %d): %s", path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Query searches the index for the nearest neighbors of the given vector
func (c *PineconeClient) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	var queryResp QueryResponse
	if err := c.do(ctx, "POST", "/query", req, &queryResp); err != nil {
		return nil, err
	}
	return &queryResp, nil
}

// DescribeIndexStats returns vector counts per namespace
func (c *PineconeClient) DescribeIndexStats(ctx context.Context) (*IndexStats, error) {
	var stats IndexStats
	if err := c.do(ctx, "POST", "/describe_index_stats", struct{}{}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Heartbeat checks that the index is reachable with the configured credentials
func (c *PineconeClient) Heartbeat(ctx context.Context) error {
	_, err := c.DescribeIndexStats(ctx)
	return err
}

// Close closes the HTTP client connections
func (c *PineconeClient) Close() {
	c.httpClient.CloseIdleConnections()
}
