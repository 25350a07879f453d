package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/model"
)

// Request and response bodies shared by the handlers, and the helpers that
// write them.

type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse acknowledges a command that returns no resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// UpdateTitleRequest renames a chat.
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100" example:"Trip planning"`
}

// OpenSessionRequest starts a live session. ChatID 0 opens a new chat.
type OpenSessionRequest struct {
	ChatID    int64           `json:"chat_id" validate:"gte=0" example:"0"`
	Platforms []model.APIType `json:"platforms" validate:"omitempty,unique,dive,oneof=ollama on_device" example:"ollama,on_device"`
}

// OpenSessionResponse carries the new session id and its first snapshot.
type OpenSessionResponse struct {
	SessionID string                `json:"session_id"`
	Snapshot  model.SessionSnapshot `json:"snapshot"`
}

// QuestionRequest is used both to ask and to update the input buffer.
type QuestionRequest struct {
	Text string `json:"text" example:"What is 2+2?"`
}

// MessageRequest identifies a message for retry or edit.
type MessageRequest struct {
	ID        int64         `json:"id" validate:"gte=0"`
	Content   string        `json:"content"`
	Platform  model.APIType `json:"platform" validate:"omitempty,oneof=ollama on_device"`
	CreatedAt int64         `json:"created_at"`
}

func (m MessageRequest) toModel() model.Message {
	return model.Message{ID: m.ID, Content: m.Content, Platform: m.Platform, CreatedAt: m.CreatedAt}
}

// ExportResponse is a rendered Markdown transcript.
type ExportResponse struct {
	Filename string `json:"filename"`
	Markdown string `json:"markdown"`
}

// errorStatus maps a service error to its HTTP status and the message the
// client sees. Validation and setup errors are shown verbatim; anything else
// gets a fixed message so internals stay in the log.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		return http.StatusNotFound, "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, app_errors.ErrConflict):
		return http.StatusConflict, "The chat is busy answering a question, try again when it is idle."
	case errors.Is(err, app_errors.ErrMisconfigured):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "An unexpected internal server error occurred."
	}
}

// respondWithError writes err as an ErrorResponse with the mapped status.
func respondWithError(w http.ResponseWriter, err error) {
	statusCode, message := errorStatus(err)
	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)
	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// startStream sets the Server-Sent Events headers.
func startStream(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// writeSSE writes one event and flushes it. An empty event name sends a
// plain data message.
func writeSSE(w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		// Bad data, not a dead connection: keep the stream open.
		slog.Error("Failed to marshal stream data to JSON", "error", err)
		return nil
	}

	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return fmt.Errorf("failed to write event to stream: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("failed to write data to stream: %w", err)
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

// writeStreamEvent sends data; an error means the client went away.
func writeStreamEvent(w http.ResponseWriter, data any) error {
	return writeSSE(w, "", data)
}

// sendStreamError sends an `event: error` message so clients can listen for
// failures separately from data.
func sendStreamError(w http.ResponseWriter, message string) {
	slog.Warn("Sending stream error to client", "message", message)
	if err := writeSSE(w, "error", ErrorResponse{Error: message}); err != nil {
		slog.Warn("Failed to write stream error, client might have disconnected", "error", err)
	}
}
