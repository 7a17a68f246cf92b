package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"profadvisor/internal/models"
	"profadvisor/internal/repositories"
	"profadvisor/internal/services"
)

// TurnStarter runs the RAG pipeline and hands back the completion stream
type TurnStarter interface {
	StartTurn(ctx context.Context, session []models.ChatMessage) (services.CompletionStream, error)
}

// ChatHandler relays streaming RAG chat turns
type ChatHandler struct {
	chat   TurnStarter
	logger *log.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat TurnStarter, logger *log.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

// HandleChat handles a streaming RAG chat turn
// @Summary Streaming RAG chat
// @Description Accepts the full conversation and streams the assistant's answer as plain UTF-8 text. The stream has no framing; connection close marks the end of the turn.
// @Tags chat
// @Accept json
// @Produce text/plain
// @Param session body []models.ChatMessage true "Ordered conversation ending with the newest user message"
// @Success 200 {string} string "Streamed assistant response"
// @Failure 400 {object} models.ChatErrorResponse
// @Failure 502 {object} models.ChatErrorResponse
// @Router /api/chat [post]
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var session []models.ChatMessage
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := models.ValidateSession(session); err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	stream, err := h.chat.StartTurn(r.Context(), session)
	if err != nil {
		h.logger.Printf("Chat turn failed before streaming: %v", err)
		h.sendError(w, upstreamStatus(err), err.Error())
		return
	}
	defer stream.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.sendError(w, http.StatusInternalServerError, "streaming unsupported by connection")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	// Pull-driven relay: each fragment is written and flushed before the
	// next provider read, so the client's pace bounds provider consumption.
	wrote := false
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			// Clean close is the sole end-of-turn signal.
			return
		}
		if err != nil {
			h.logger.Printf("Completion stream failed mid-turn: %v", err)
			if !wrote {
				h.sendError(w, http.StatusBadGateway, "completion stream failed: "+err.Error())
				return
			}
			// Headers are already on the wire; abort the connection so the
			// client sees a broken stream instead of a silent truncation.
			panic(http.ErrAbortHandler)
		}

		if len(resp.Choices) == 0 {
			continue
		}
		content := resp.Choices[0].Delta.Content
		if content == "" {
			continue
		}

		if _, err := io.WriteString(w, content); err != nil {
			h.logger.Printf("Client went away mid-stream: %v", err)
			return
		}
		flusher.Flush()
		wrote = true
	}
}

func (h *ChatHandler) sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ChatErrorResponse{
		Message: message,
		Status:  "error",
	})
}

// upstreamStatus maps pipeline failures to response codes: provider and
// index failures are bad-gateway, anything else is internal.
func upstreamStatus(err error) int {
	var provErr *services.ProviderError
	var retErr *repositories.RetrievalError
	if errors.As(err, &provErr) || errors.As(err, &retErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
