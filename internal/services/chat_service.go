package services

import (
	"context"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"profadvisor/internal/models"
	"profadvisor/internal/repositories"
)

// Embedder turns text into an embedding vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CompletionOpener starts streaming completions
type CompletionOpener interface {
	OpenStream(ctx context.Context, messages []openai.ChatCompletionMessage) (CompletionStream, error)
}

// ChatService runs the retrieval-augmented chat pipeline for one turn:
// embed the latest user message, retrieve the nearest reviews, assemble the
// augmented prompt, and open the completion stream. The steps run strictly
// in sequence; each output is a hard input of the next.
type ChatService struct {
	embedder    Embedder
	index       repositories.VectorIndex
	completions CompletionOpener
	prompts     *PromptBuilder
	analyzer    *QueryAnalyzer
	professors  repositories.ProfessorRepository // optional, may be nil
	namespace   string
	topK        int
	callTimeout time.Duration
	logger      *log.Logger
}

// ChatServiceConfig wires the pipeline dependencies
type ChatServiceConfig struct {
	Embedder    Embedder
	Index       repositories.VectorIndex
	Completions CompletionOpener
	Prompts     *PromptBuilder
	Analyzer    *QueryAnalyzer
	Professors  repositories.ProfessorRepository
	Namespace   string
	TopK        int
	CallTimeout time.Duration // per embedding/retrieval call
	Logger      *log.Logger
}

// NewChatService creates a new chat service
func NewChatService(cfg ChatServiceConfig) *ChatService {
	if cfg.TopK == 0 {
		cfg.TopK = 3
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 15 * time.Second
	}
	return &ChatService{
		embedder:    cfg.Embedder,
		index:       cfg.Index,
		completions: cfg.Completions,
		prompts:     cfg.Prompts,
		analyzer:    cfg.Analyzer,
		professors:  cfg.Professors,
		namespace:   cfg.Namespace,
		topK:        cfg.TopK,
		callTimeout: cfg.CallTimeout,
		logger:      cfg.Logger,
	}
}

// StartTurn runs the pipeline for the given session and returns the open
// completion stream. Any step failing aborts the turn: an embedding failure
// means no retrieval and no completion call is made. The stream inherits ctx
// so the caller's disconnect cancels the provider call.
func (s *ChatService) StartTurn(ctx context.Context, session []models.ChatMessage) (CompletionStream, error) {
	if err := models.ValidateSession(session); err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	query := session[len(session)-1].Content

	embedCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	vector, err := s.embedder.Embed(embedCtx, query)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	filter := s.subjectFilter(ctx, query)

	queryCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	matches, err := s.index.Query(queryCtx, vector, s.topK, s.namespace, filter)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to query review index: %w", err)
	}
	s.logger.Printf("Retrieved %d/%d matches (namespace: %s, filtered: %t)",
		len(matches), s.topK, s.namespace, filter != nil)

	prompt := s.prompts.Build(session, matches)

	stream, err := s.completions.OpenStream(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to start completion: %w", err)
	}

	return stream, nil
}

// subjectFilter derives a metadata filter from subjects mentioned in the
// query. Best-effort only: with no catalog, an unreachable catalog, or no
// subject hit the query runs unfiltered.
func (s *ChatService) subjectFilter(ctx context.Context, query string) map[string]interface{} {
	if s.analyzer == nil || s.professors == nil {
		return nil
	}

	subjects, err := s.professors.Subjects(ctx)
	if err != nil {
		s.logger.Printf("Subject lookup unavailable, querying unfiltered: %v", err)
		return nil
	}

	keywords, err := s.analyzer.ExtractKeywords(query)
	if err != nil {
		s.logger.Printf("Keyword extraction failed, querying unfiltered: %v", err)
		return nil
	}

	matched := s.analyzer.MatchSubjects(keywords, subjects)
	if len(matched) > 0 {
		s.logger.Printf("Query mentions subjects %v", matched)
	}
	return s.analyzer.SubjectFilter(matched)
}
