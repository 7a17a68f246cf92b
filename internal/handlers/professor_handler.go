package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"profadvisor/internal/models"
	"profadvisor/internal/repositories"
)

// ProfessorHandler handles HTTP requests for the professor catalog
type ProfessorHandler struct {
	professors repositories.ProfessorRepository // nil when the catalog backend is unavailable
	logger     *log.Logger
}

// NewProfessorHandler creates a new professor catalog handler
func NewProfessorHandler(professors repositories.ProfessorRepository, logger *log.Logger) *ProfessorHandler {
	return &ProfessorHandler{
		professors: professors,
		logger:     logger,
	}
}

// ListProfessors handles catalog listing requests
// @Summary List professors
// @Description Get a stable page of professor catalog records
// @Tags professors
// @Produce json
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Page start"
// @Success 200 {object} models.ProfessorListResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/professors [get]
func (h *ProfessorHandler) ListProfessors(w http.ResponseWriter, r *http.Request) {
	if h.professors == nil {
		h.sendError(w, http.StatusServiceUnavailable, "professor catalog is not available")
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	professors, total, err := h.professors.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Printf("Failed to list professors: %v", err)
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	list := make([]models.Professor, 0, len(professors))
	for _, p := range professors {
		list = append(list, *p)
	}

	h.sendJSON(w, http.StatusOK, models.ProfessorListResponse{
		Professors: list,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	})
}

// GetProfessor handles single-record catalog lookups
// @Summary Get professor
// @Description Get one professor catalog record by id
// @Tags professors
// @Produce json
// @Param id path string true "Professor id"
// @Success 200 {object} models.Professor
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/professors/{id} [get]
func (h *ProfessorHandler) GetProfessor(w http.ResponseWriter, r *http.Request) {
	if h.professors == nil {
		h.sendError(w, http.StatusServiceUnavailable, "professor catalog is not available")
		return
	}

	id := mux.Vars(r)["id"]

	professor, err := h.professors.Get(r.Context(), id)
	if err != nil {
		if repositories.IsNotFound(err) {
			h.sendError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Printf("Failed to get professor %s: %v", id, err)
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, professor)
}

// UpsertProfessor handles catalog record upserts
// @Summary Upsert professor
// @Description Create or replace a professor catalog record
// @Tags professors
// @Accept json
// @Produce json
// @Param id path string true "Professor id"
// @Param professor body models.Professor true "Catalog record"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/professors/{id} [put]
func (h *ProfessorHandler) UpsertProfessor(w http.ResponseWriter, r *http.Request) {
	if h.professors == nil {
		h.sendError(w, http.StatusServiceUnavailable, "professor catalog is not available")
		return
	}

	var professor models.Professor
	if err := json.NewDecoder(r.Body).Decode(&professor); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	professor.ID = mux.Vars(r)["id"]

	if err := professor.Validate(); err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.professors.Upsert(r.Context(), &professor); err != nil {
		h.logger.Printf("Failed to upsert professor %s: %v", professor.ID, err)
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Professor stored successfully",
	})
}

func (h *ProfessorHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode response: %v", err)
	}
}

func (h *ProfessorHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error:   message,
		Success: false,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

// ErrorResponse is the generic API error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// SuccessResponse is the generic API success payload
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
