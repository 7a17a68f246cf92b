package services

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"profadvisor/internal/models"
	"profadvisor/internal/repositories"
)

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockVectorIndex is a mock implementation of repositories.VectorIndex
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) Query(ctx context.Context, vector []float32, topK int, namespace string, filter map[string]interface{}) ([]*repositories.Match, error) {
	args := m.Called(ctx, vector, topK, namespace, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.Match), args.Error(1)
}

func (m *MockVectorIndex) Stats(ctx context.Context) (*repositories.IndexInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.IndexInfo), args.Error(1)
}

func (m *MockVectorIndex) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCompletionOpener is a mock implementation of CompletionOpener
type MockCompletionOpener struct {
	mock.Mock
}

func (m *MockCompletionOpener) OpenStream(ctx context.Context, messages []openai.ChatCompletionMessage) (CompletionStream, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(CompletionStream), args.Error(1)
}

// MockProfessorRepository is a mock implementation of
// repositories.ProfessorRepository
type MockProfessorRepository struct {
	mock.Mock
}

func (m *MockProfessorRepository) Upsert(ctx context.Context, p *models.Professor) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfessorRepository) Get(ctx context.Context, id string) (*models.Professor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Professor), args.Error(1)
}

func (m *MockProfessorRepository) List(ctx context.Context, limit, offset int) ([]*models.Professor, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Professor), args.Int(1), args.Error(2)
}

func (m *MockProfessorRepository) Subjects(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProfessorRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// fakeStream is a canned completion stream for pipeline tests
type fakeStream struct {
	fragments []string
	pos       int
	closed    bool
}

func (f *fakeStream) Recv() (openai.ChatCompletionStreamResponse, error) {
	if f.pos >= len(f.fragments) {
		return openai.ChatCompletionStreamResponse{}, io.EOF
	}
	content := f.fragments[f.pos]
	f.pos++
	return openai.ChatCompletionStreamResponse{
		Choices: []openai.ChatCompletionStreamChoice{
			{Delta: openai.ChatCompletionStreamChoiceDelta{Content: content}},
		},
	}, nil
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

func newTestChatService(cfg ChatServiceConfig) *ChatService {
	if cfg.Prompts == nil {
		cfg.Prompts = NewPromptBuilder("sys")
	}
	cfg.Logger = log.New(io.Discard, "", 0)
	return NewChatService(cfg)
}

func TestStartTurnSuccess(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockVectorIndex)
	opener := new(MockCompletionOpener)
	stream := &fakeStream{fragments: []string{"Hello"}}

	vector := []float32{0.1, 0.2, 0.3}
	matches := sampleMatches()

	embedder.On("Embed", mock.Anything, "Who teaches algorithms well?").Return(vector, nil)
	index.On("Query", mock.Anything, vector, 3, "ns1", mock.Anything).Return(matches, nil)
	opener.On("OpenStream", mock.Anything, mock.MatchedBy(func(msgs []openai.ChatCompletionMessage) bool {
		// Retrieval results must reach the provider inside the final message.
		last := msgs[len(msgs)-1]
		return len(msgs) == 3 &&
			msgs[0].Role == openai.ChatMessageRoleSystem &&
			last.Role == openai.ChatMessageRoleUser
	})).Return(stream, nil)

	svc := newTestChatService(ChatServiceConfig{
		Embedder:    embedder,
		Index:       index,
		Completions: opener,
		Namespace:   "ns1",
	})

	got, err := svc.StartTurn(context.Background(), sampleSession())

	require.NoError(t, err)
	assert.Same(t, stream, got.(*fakeStream))
	embedder.AssertExpectations(t)
	index.AssertExpectations(t)
	opener.AssertExpectations(t)
}

func TestStartTurnInvalidSession(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockVectorIndex)
	opener := new(MockCompletionOpener)

	svc := newTestChatService(ChatServiceConfig{
		Embedder:    embedder,
		Index:       index,
		Completions: opener,
	})

	_, err := svc.StartTurn(context.Background(), []models.ChatMessage{
		{Role: models.RoleAssistant, Content: "Hi"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session")
	embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestStartTurnEmbedFailureSkipsRetrievalAndCompletion(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockVectorIndex)
	opener := new(MockCompletionOpener)

	embedder.On("Embed", mock.Anything, mock.Anything).
		Return(nil, errors.New("provider unavailable"))

	svc := newTestChatService(ChatServiceConfig{
		Embedder:    embedder,
		Index:       index,
		Completions: opener,
	})

	_, err := svc.StartTurn(context.Background(), sampleSession())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed query")
	index.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	opener.AssertNotCalled(t, "OpenStream", mock.Anything, mock.Anything)
}

func TestStartTurnRetrievalFailureSkipsCompletion(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockVectorIndex)
	opener := new(MockCompletionOpener)

	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	index.On("Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("index down"))

	svc := newTestChatService(ChatServiceConfig{
		Embedder:    embedder,
		Index:       index,
		Completions: opener,
	})

	_, err := svc.StartTurn(context.Background(), sampleSession())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query review index")
	opener.AssertNotCalled(t, "OpenStream", mock.Anything, mock.Anything)
}

func TestStartTurnZeroMatchesStillOpensStream(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockVectorIndex)
	opener := new(MockCompletionOpener)
	stream := &fakeStream{}

	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	index.On("Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*repositories.Match{}, nil)
	opener.On("OpenStream", mock.Anything, mock.MatchedBy(func(msgs []openai.ChatCompletionMessage) bool {
		// Empty retrieval still announces itself to the model.
		last := msgs[len(msgs)-1]
		return last.Role == openai.ChatMessageRoleUser &&
			len(last.Content) > len("Who teaches algorithms well?")
	})).Return(stream, nil)

	svc := newTestChatService(ChatServiceConfig{
		Embedder:    embedder,
		Index:       index,
		Completions: opener,
	})

	got, err := svc.StartTurn(context.Background(), sampleSession())

	require.NoError(t, err)
	assert.NotNil(t, got)
	opener.AssertExpectations(t)
}

func TestStartTurnAppliesSubjectFilter(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockVectorIndex)
	opener := new(MockCompletionOpener)
	professors := new(MockProfessorRepository)

	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	professors.On("Subjects", mock.Anything).Return([]string{"Chemistry", "History"}, nil)
	index.On("Query", mock.Anything, mock.Anything, 3, "ns1", mock.MatchedBy(func(filter map[string]interface{}) bool {
		subject, ok := filter["subject"].(map[string]interface{})
		if !ok {
			return false
		}
		in, ok := subject["$in"].([]string)
		return ok && len(in) == 1 && in[0] == "Chemistry"
	})).Return([]*repositories.Match{}, nil)
	opener.On("OpenStream", mock.Anything, mock.Anything).Return(&fakeStream{}, nil)

	svc := newTestChatService(ChatServiceConfig{
		Embedder:    embedder,
		Index:       index,
		Completions: opener,
		Analyzer:    NewQueryAnalyzer(),
		Professors:  professors,
		Namespace:   "ns1",
	})

	_, err := svc.StartTurn(context.Background(), []models.ChatMessage{
		{Role: models.RoleUser, Content: "Who is a good chemistry professor?"},
	})

	require.NoError(t, err)
	index.AssertExpectations(t)
}

func TestStartTurnCatalogFailureQueriesUnfiltered(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockVectorIndex)
	opener := new(MockCompletionOpener)
	professors := new(MockProfessorRepository)

	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	professors.On("Subjects", mock.Anything).Return(nil, errors.New("redis down"))
	index.On("Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(filter map[string]interface{}) bool {
		return filter == nil
	})).Return([]*repositories.Match{}, nil)
	opener.On("OpenStream", mock.Anything, mock.Anything).Return(&fakeStream{}, nil)

	svc := newTestChatService(ChatServiceConfig{
		Embedder:    embedder,
		Index:       index,
		Completions: opener,
		Analyzer:    NewQueryAnalyzer(),
		Professors:  professors,
	})

	_, err := svc.StartTurn(context.Background(), sampleSession())

	require.NoError(t, err)
	index.AssertExpectations(t)
}

func TestStartTurnCustomTopK(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockVectorIndex)
	opener := new(MockCompletionOpener)

	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	index.On("Query", mock.Anything, mock.Anything, 5, mock.Anything, mock.Anything).
		Return([]*repositories.Match{}, nil)
	opener.On("OpenStream", mock.Anything, mock.Anything).Return(&fakeStream{}, nil)

	svc := newTestChatService(ChatServiceConfig{
		Embedder:    embedder,
		Index:       index,
		Completions: opener,
		TopK:        5,
	})

	_, err := svc.StartTurn(context.Background(), sampleSession())

	require.NoError(t, err)
	index.AssertExpectations(t)
}
