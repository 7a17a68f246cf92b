package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"profadvisor/internal/models"
	"profadvisor/internal/repositories"
)

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

// newCatalogRouter mounts the handler the way the real server does, so path
// variables resolve through mux.
func newCatalogRouter(h *ProfessorHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/professors", h.ListProfessors).Methods("GET")
	r.HandleFunc("/api/v1/professors/{id}", h.GetProfessor).Methods("GET")
	r.HandleFunc("/api/v1/professors/{id}", h.UpsertProfessor).Methods("PUT")
	return r
}

func sampleProfessor() *models.Professor {
	return &models.Professor{
		ID:      "Dr. Ada Lovelace",
		Subject: "Computer Science",
		Stars:   5,
		Review:  "Brilliant lectures on algorithm design.",
	}
}

func TestListProfessors(t *testing.T) {
	repo := new(MockProfessorRepository)
	repo.On("List", mock.Anything, 50, 0).
		Return([]*models.Professor{sampleProfessor()}, 1, nil)

	router := newCatalogRouter(NewProfessorHandler(repo, testLogger()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/professors", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.ProfessorListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Professors, 1)
	assert.Equal(t, "Dr. Ada Lovelace", resp.Professors[0].ID)
	repo.AssertExpectations(t)
}

func TestListProfessorsPagination(t *testing.T) {
	repo := new(MockProfessorRepository)
	repo.On("List", mock.Anything, 10, 20).
		Return([]*models.Professor{}, 42, nil)

	router := newCatalogRouter(NewProfessorHandler(repo, testLogger()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/professors?limit=10&offset=20", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.ProfessorListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.Total)
	assert.Equal(t, 10, resp.Limit)
	assert.Equal(t, 20, resp.Offset)
	repo.AssertExpectations(t)
}

func TestGetProfessor(t *testing.T) {
	repo := new(MockProfessorRepository)
	repo.On("Get", mock.Anything, "Dr. Ada Lovelace").Return(sampleProfessor(), nil)

	router := newCatalogRouter(NewProfessorHandler(repo, testLogger()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/professors/Dr.%20Ada%20Lovelace", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.Professor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Computer Science", resp.Subject)
}

func TestGetProfessorNotFound(t *testing.T) {
	repo := new(MockProfessorRepository)
	repo.On("Get", mock.Anything, "nobody").
		Return(nil, repositories.ProfessorNotFoundError("nobody"))

	router := newCatalogRouter(NewProfessorHandler(repo, testLogger()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/professors/nobody", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProfessorBackendFailure(t *testing.T) {
	repo := new(MockProfessorRepository)
	repo.On("Get", mock.Anything, "anyone").
		Return(nil, errors.New("redis down"))

	router := newCatalogRouter(NewProfessorHandler(repo, testLogger()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/professors/anyone", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUpsertProfessor(t *testing.T) {
	repo := new(MockProfessorRepository)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *models.Professor) bool {
		// The path id wins over any id in the body.
		return p.ID == "prof-1" && p.Subject == "History"
	})).Return(nil)

	body, err := json.Marshal(models.Professor{
		ID:      "ignored",
		Subject: "History",
		Stars:   4,
		Review:  "Engaging seminars.",
	})
	require.NoError(t, err)

	router := newCatalogRouter(NewProfessorHandler(repo, testLogger()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/professors/prof-1", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestUpsertProfessorInvalidRecord(t *testing.T) {
	repo := new(MockProfessorRepository)

	body, err := json.Marshal(models.Professor{
		Subject: "History",
		Stars:   9, // out of range
		Review:  "Engaging seminars.",
	})
	require.NoError(t, err)

	router := newCatalogRouter(NewProfessorHandler(repo, testLogger()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/professors/prof-1", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCatalogUnavailable(t *testing.T) {
	router := newCatalogRouter(NewProfessorHandler(nil, testLogger()))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/professors", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/professors/prof-1", nil),
		httptest.NewRequest(http.MethodPut, "/api/v1/professors/prof-1", bytes.NewReader([]byte("{}"))),
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	}
}
