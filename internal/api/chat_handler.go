package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/interfaces"
)

// ChatHandler serves the saved chat list.
type ChatHandler struct {
	chats interfaces.ChatService
}

func NewChatHandler(chats interfaces.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// chatIDParam reads a positive chat id from the URL.
func chatIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "chatID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid chat id %q", app_errors.ErrValidation, raw)
	}
	return id, nil
}

// GetChats godoc
// @Summary      List chats
// @Description  Returns every saved chat, most recently updated first.
// @Tags         Chats
// @Produce      json
// @Success      200  {array}   model.ChatRoom
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/chats [get]
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.chats.ListRooms(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rooms)
}

// GetChat godoc
// @Summary      Get a chat
// @Description  Returns a saved chat with its full transcript.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path      int  true  "Chat ID"
// @Success      200     {object}  model.FullChat
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /v1/chats/{chatID} [get]
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	chat, err := h.chats.GetFullChat(r.Context(), chatID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, chat)
}

// HandleDeleteChat godoc
// @Summary      Delete a chat
// @Description  Deletes a chat and all of its messages.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path      int  true  "Chat ID"
// @Success      200     {object}  StatusResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /v1/chats/{chatID} [delete]
func (h *ChatHandler) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.chats.DeleteChats(r.Context(), []int64{chatID}); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}
