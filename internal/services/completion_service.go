package services

import (
	"context"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

// CompletionStream is a pull-based handle on an in-flight completion.
// Recv returns io.EOF when the provider stream is exhausted; any other error
// means the stream died mid-turn. The consumer's Recv pace is what drives
// reads from the provider, so a slow consumer never forces buffering here.
type CompletionStream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// chatStreamClient is the subset of the OpenAI client used for completions
type chatStreamClient interface {
	CreateChatCompletionStream(ctx context.Context, request openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// CompletionService opens streaming chat completions
type CompletionService struct {
	client chatStreamClient
	model  string
	logger *log.Logger
}

// NewCompletionService creates a new completion service
func NewCompletionService(client chatStreamClient, model string, logger *log.Logger) *CompletionService {
	return &CompletionService{
		client: client,
		model:  model,
		logger: logger,
	}
}

// OpenStream starts a streaming completion for the assembled prompt.
// The stream inherits ctx, so cancelling the request tears it down.
func (s *CompletionService) OpenStream(ctx context.Context, messages []openai.ChatCompletionMessage) (CompletionStream, error) {
	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		s.logger.Printf("Failed to open completion stream: %v", err)
		return nil, NewProviderError("completion", "open_stream", err, "")
	}

	s.logger.Printf("Completion stream opened (model: %s, messages: %d)", s.model, len(messages))
	return stream, nil
}
