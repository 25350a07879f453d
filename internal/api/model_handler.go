package api

import (
	"log/slog"
	"net/http"

	"multichat/backend/internal/interfaces"
	"multichat/backend/internal/llm"
)

// ModelHandler handles HTTP requests for on-device model management.
type ModelHandler struct {
	service interfaces.ModelService
}

func NewModelHandler(svc interfaces.ModelService) *ModelHandler {
	return &ModelHandler{service: svc}
}

// HandleListModels godoc
// @Summary      List local models
// @Description  Gets the models available to the on-device runtime.
// @Tags         Models
// @Produce      json
// @Success      200  {object}  llm.ListModelsResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/models [get]
func (h *ModelHandler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.service.List(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models)
}

// HandlePullModel godoc
// @Summary      Pull a new model
// @Description  Downloads a model into the on-device runtime. This is a streaming endpoint.
// @Tags         Models
// @Accept       json
// @Produce      text/event-stream
// @Param        modelRequest  body  llm.PullModelRequest  true  "Model Name to Pull"
// @Success      200           {object}  llm.PullStatus "Stream of progress status"
// @Failure      400           {object}  ErrorResponse "Sent as a stream error event"
// @Router       /v1/models/pull [post]
func (h *ModelHandler) HandlePullModel(w http.ResponseWriter, r *http.Request) {
	startStream(w)

	var req llm.PullModelRequest
	if err := decodeJSON(r, &req); err != nil {
		sendStreamError(w, "Invalid request body")
		return
	}
	if err := validateRequest(&req); err != nil {
		sendStreamError(w, err.Error())
		return
	}
	req.Stream = true

	streamChan := make(chan llm.PullStatus)
	errChan := make(chan error, 1)
	go func() {
		errChan <- h.service.Pull(r.Context(), &req, streamChan)
	}()

	for chunk := range streamChan {
		if chunk.Error != "" {
			slog.Warn("Received an error in the pull stream", "model", req.Name, "error", chunk.Error)
		}
		if err := writeStreamEvent(w, chunk); err != nil {
			slog.Warn("Could not write to model pull stream, client likely disconnected", "error", err)
			break
		}
	}
	// Keep draining so the runtime client is never blocked on a send.
	for range streamChan {
	}

	if err := <-errChan; err != nil && r.Context().Err() == nil {
		slog.Error("Error from model pull service", "model", req.Name, "error", err)
		sendStreamError(w, err.Error())
		return
	}
	slog.Info("Finished streaming model pull", "model", req.Name)
}
