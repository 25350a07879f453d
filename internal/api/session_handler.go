package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/interfaces"
	"multichat/backend/internal/model"
)

// SessionHandler exposes live chat sessions: asking, retrying, editing and
// following a session's state as a stream.
type SessionHandler struct {
	sessions interfaces.SessionManager
}

func NewSessionHandler(sessions interfaces.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) session(r *http.Request) (interfaces.Session, error) {
	return h.sessions.Get(chi.URLParam(r, "sessionID"))
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation)
	}
	return nil
}

// HandleOpenSession godoc
// @Summary      Open a session
// @Description  Starts a live session for a saved chat, or for a new chat when chat_id is 0.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request  body      OpenSessionRequest  true  "Chat and platforms"
// @Success      201      {object}  OpenSessionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /v1/sessions [post]
func (h *SessionHandler) HandleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	session, err := h.sessions.Open(r.Context(), req.ChatID, req.Platforms)
	if err != nil {
		respondWithError(w, err)
		return
	}
	snap, err := session.Snapshot(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, OpenSessionResponse{SessionID: session.ID(), Snapshot: snap})
}

// HandleGetSession godoc
// @Summary      Get session state
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  model.SessionSnapshot
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [get]
func (h *SessionHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	snap, err := session.Snapshot(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// HandleCloseSession godoc
// @Summary      Close a session
// @Description  Cancels in-flight streams. A round that has not finished is not saved.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [delete]
func (h *SessionHandler) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "sessionID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleAsk godoc
// @Summary      Ask a question
// @Description  Sends the question to every backend of the chat. Progress is delivered on the events stream.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string           true  "Session ID"
// @Param        request    body      QuestionRequest  true  "Question"
// @Success      202        {object}  StatusResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/questions [post]
func (h *SessionHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	var req QuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := session.Ask(r.Context(), req.Text); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, StatusResponse{Status: "accepted"})
}

// HandleUpdateQuestion godoc
// @Summary      Update the input buffer
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string           true  "Session ID"
// @Param        request    body      QuestionRequest  true  "Draft text"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/question [put]
func (h *SessionHandler) HandleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	var req QuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := session.UpdateQuestion(r.Context(), req.Text); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleRetry godoc
// @Summary      Retry an answer
// @Description  Asks the answer's backend again. Other answers are kept.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string          true  "Session ID"
// @Param        request    body      MessageRequest  true  "Answer to retry"
// @Success      202        {object}  StatusResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/retry [post]
func (h *SessionHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	h.handleMessageAction(w, r, interfaces.Session.Retry)
}

// HandleEdit godoc
// @Summary      Edit a question
// @Description  Drops the question and everything after it, then asks the edited text.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string          true  "Session ID"
// @Param        request    body      MessageRequest  true  "Edited question"
// @Success      202        {object}  StatusResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/edit [post]
func (h *SessionHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	h.handleMessageAction(w, r, interfaces.Session.Edit)
}

func (h *SessionHandler) handleMessageAction(w http.ResponseWriter, r *http.Request, action func(interfaces.Session, context.Context, model.Message) error) {
	session, err := h.session(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	var req MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := action(session, r.Context(), req.toModel()); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, StatusResponse{Status: "accepted"})
}

// HandleUpdateTitle godoc
// @Summary      Rename the chat
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string              true  "Session ID"
// @Param        request    body      UpdateTitleRequest  true  "New title"
// @Success      200        {object}  StatusResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/title [put]
func (h *SessionHandler) HandleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	var req UpdateTitleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := session.UpdateTitle(r.Context(), req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleExport godoc
// @Summary      Export the transcript
// @Description  Renders the chat as Markdown. With ?download=1 the file is sent as an attachment.
// @Tags         Sessions
// @Produce      json
// @Produce      text/markdown
// @Param        sessionID  path      string  true   "Session ID"
// @Param        download   query     bool    false  "Send as a file"
// @Success      200        {object}  ExportResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/export [get]
func (h *SessionHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	download := false
	if raw := r.URL.Query().Get("download"); raw != "" {
		var err error
		if download, err = strconv.ParseBool(raw); err != nil {
			respondWithError(w, fmt.Errorf("%w: download must be true or false", app_errors.ErrValidation))
			return
		}
	}

	session, err := h.session(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	filename, markdown, err := session.Export(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}

	if download {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(markdown)); err != nil {
			slog.Warn("Failed to write export", "error", err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, ExportResponse{Filename: filename, Markdown: markdown})
}

// HandleEvents godoc
// @Summary      Follow a session
// @Description  Streams the session snapshot after every change. This is a streaming endpoint.
// @Tags         Sessions
// @Produce      text/event-stream
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  model.SessionSnapshot  "Stream of snapshots"
// @Failure      404        {object}  ErrorResponse          "Sent as a stream error event"
// @Router       /v1/sessions/{sessionID}/events [get]
func (h *SessionHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	startStream(w)

	session, err := h.session(r)
	if err != nil {
		sendStreamError(w, err.Error())
		return
	}
	updates, err := session.Subscribe(r.Context())
	if err != nil {
		sendStreamError(w, err.Error())
		return
	}

	for snap := range updates {
		if err := writeStreamEvent(w, snap); err != nil {
			slog.Info("Session stream closed by client", "session_id", session.ID(), "error", err)
			break
		}
	}
	// Drain so the subscription can be released once the request context ends.
	for range updates {
	}
}
