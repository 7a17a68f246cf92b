package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"profadvisor/internal/repositories"
)

// modelLister is the subset of the OpenAI client used for the health probe
type modelLister interface {
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// SystemHealthHandler reports reachability of the external collaborators:
// the vector index, the completion/embedding provider, and the catalog.
type SystemHealthHandler struct {
	index      repositories.VectorIndex
	professors repositories.ProfessorRepository // nil when the catalog backend is unavailable
	provider   modelLister
	logger     *log.Logger
}

// NewSystemHealthHandler creates a new dependency health handler
func NewSystemHealthHandler(index repositories.VectorIndex, professors repositories.ProfessorRepository, provider modelLister, logger *log.Logger) *SystemHealthHandler {
	return &SystemHealthHandler{
		index:      index,
		professors: professors,
		provider:   provider,
		logger:     logger,
	}
}

// SystemHealthResponse reports per-dependency status
type SystemHealthResponse struct {
	Status     string            `json:"status"` // "success" if every required dependency is up
	Components map[string]string `json:"components"`
}

// HandleHealth checks each external dependency
// @Summary Dependency health
// @Description Check reachability of the vector index, the model provider, and the professor catalog
// @Tags general
// @Produce json
// @Success 200 {object} SystemHealthResponse
// @Failure 503 {object} SystemHealthResponse
// @Router /api/v1/health [get]
func (h *SystemHealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	components := make(map[string]string)
	healthy := true

	if err := h.index.Ping(ctx); err != nil {
		h.logger.Printf("Vector index health check failed: %v", err)
		components["vector_index"] = err.Error()
		healthy = false
	} else {
		components["vector_index"] = "ok"
	}

	if _, err := h.provider.ListModels(ctx); err != nil {
		h.logger.Printf("Model provider health check failed: %v", err)
		components["model_provider"] = err.Error()
		healthy = false
	} else {
		components["model_provider"] = "ok"
	}

	// The catalog is optional; chat degrades without it.
	if h.professors == nil {
		components["professor_catalog"] = "disabled"
	} else if err := h.professors.Ping(ctx); err != nil {
		h.logger.Printf("Catalog health check failed: %v", err)
		components["professor_catalog"] = err.Error()
	} else {
		components["professor_catalog"] = "ok"
	}

	status := http.StatusOK
	response := SystemHealthResponse{Status: "success", Components: components}
	if !healthy {
		status = http.StatusServiceUnavailable
		response.Status = "error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
