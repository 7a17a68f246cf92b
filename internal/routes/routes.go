package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"profadvisor/internal/handlers"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Health http.HandlerFunc
	Home   http.HandlerFunc

	Chat         *handlers.ChatHandler
	Professors   *handlers.ProfessorHandler
	SystemHealth *handlers.SystemHealthHandler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	// Health endpoints
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/health", h.SystemHealth.HandleHealth).Methods(http.MethodGet)

	// Streaming RAG chat
	router.HandleFunc("/api/chat", h.Chat.HandleChat).Methods(http.MethodPost, http.MethodOptions)

	// Professor catalog
	router.HandleFunc("/api/v1/professors", h.Professors.ListProfessors).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/professors/{id}", h.Professors.GetProfessor).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/professors/{id}", h.Professors.UpsertProfessor).Methods(http.MethodPut, http.MethodOptions)

	// Main routes
	router.HandleFunc("/", h.Home).Methods(http.MethodGet)
}
