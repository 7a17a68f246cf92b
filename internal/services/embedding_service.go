package services

import (
	"context"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

// embeddingsClient is the subset of the OpenAI client used for embeddings
type embeddingsClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// EmbeddingService turns query text into an embedding vector
type EmbeddingService struct {
	client embeddingsClient
	model  openai.EmbeddingModel
	logger *log.Logger
}

// NewEmbeddingService creates a new embedding service
func NewEmbeddingService(client embeddingsClient, model string, logger *log.Logger) *EmbeddingService {
	return &EmbeddingService{
		client: client,
		model:  openai.EmbeddingModel(model),
		logger: logger,
	}
}

// Embed converts the given text into an embedding vector. The vector is
// computed fresh on every call; it is never cached across turns. A missing
// vector in the provider response is a ProviderError, never a zero-vector
// substitute.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, NewProviderError("embedding", "embed", nil, "cannot embed empty text")
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          s.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		s.logger.Printf("Embedding request failed: %v", err)
		return nil, NewProviderError("embedding", "embed", err, "")
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		s.logger.Printf("Embedding response missing vector (model: %s)", s.model)
		return nil, NewProviderError("embedding", "embed", nil, "provider returned no embedding vector")
	}

	vector := resp.Data[0].Embedding
	s.logger.Printf("Embedded query (dimension: %d)", len(vector))
	return vector, nil
}
