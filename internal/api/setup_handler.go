package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/interfaces"
	"multichat/backend/internal/model"
	"multichat/backend/internal/service"
)

// SetupHandler runs onboarding over HTTP. Each request carries the full
// selection so no flow state lives on the server.
type SetupHandler struct {
	settings interfaces.SettingsService
	models   interfaces.ModelService
}

func NewSetupHandler(settings interfaces.SettingsService, models interfaces.ModelService) *SetupHandler {
	return &SetupHandler{settings: settings, models: models}
}

// SetupPlatformRequest is one backend as chosen during onboarding.
type SetupPlatformRequest struct {
	Name     model.APIType `json:"name" validate:"required,oneof=ollama on_device"`
	Selected bool          `json:"selected"`
	APIURL   string        `json:"api_url"`
	Token    string        `json:"token"`
	Model    string        `json:"model"`
}

// SetupRequest completes onboarding.
type SetupRequest struct {
	Platforms []SetupPlatformRequest `json:"platforms" validate:"required,min=1,dive"`
}

// NextStepResponse names the onboarding screen to show.
type NextStepResponse struct {
	Step service.SetupStep `json:"step"`
}

// catalogs lists the local models offered as on-device defaults.
func (h *SetupHandler) catalogs(ctx context.Context) map[model.APIType][]string {
	resp, err := h.models.List(ctx)
	if err != nil {
		slog.Warn("Could not list local models for setup", "error", err)
		return nil
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return map[model.APIType][]string{model.APIOnDevice: names}
}

// HandleSetup godoc
// @Summary      Complete onboarding
// @Description  Enables exactly the selected platforms. An on-device platform without a model gets the first local model.
// @Tags         Setup
// @Accept       json
// @Produce      json
// @Param        request  body      SetupRequest  true  "Selected platforms"
// @Success      200      {array}   model.Platform
// @Failure      400      {object}  ErrorResponse
// @Router       /v1/setup [post]
func (h *SetupHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	var req SetupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	needsCatalog := false
	for _, p := range req.Platforms {
		needsCatalog = needsCatalog || (p.Selected && p.Name == model.APIOnDevice && p.Model == "")
	}
	var catalogs map[model.APIType][]string
	if needsCatalog {
		catalogs = h.catalogs(r.Context())
	}

	flow := service.NewSetupFlow(h.settings, catalogs)
	for _, p := range req.Platforms {
		if p.Selected {
			flow.ToggleSelected(p.Name)
		}
		flow.SetAPIURL(p.Name, p.APIURL)
		flow.SetToken(p.Name, p.Token)
		if p.Model != "" {
			flow.SetModel(p.Name, p.Model)
		} else if p.Selected {
			flow.SetDefaultModel(p.Name, 0)
		}
	}

	if err := flow.Save(r.Context()); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, flow.Platforms())
}

// HandleNextStep godoc
// @Summary      Next onboarding step
// @Description  Returns the screen after `step` for the selected platforms.
// @Tags         Setup
// @Produce      json
// @Param        step      query     string  false  "Current step"
// @Param        selected  query     string  false  "Comma separated platforms, e.g. ollama,on_device"
// @Success      200       {object}  NextStepResponse
// @Failure      400       {object}  ErrorResponse
// @Router       /v1/setup/next [get]
func (h *SetupHandler) HandleNextStep(w http.ResponseWriter, r *http.Request) {
	selected, err := model.ParseAPITypes(r.URL.Query().Get("selected"))
	if err != nil {
		respondWithError(w, fmt.Errorf("%w: %v", app_errors.ErrValidation, err))
		return
	}

	flow := service.NewSetupFlow(nil, nil)
	for _, api := range selected {
		flow.ToggleSelected(api)
	}
	step := service.SetupStep(r.URL.Query().Get("step"))
	respondWithJSON(w, http.StatusOK, NextStepResponse{Step: flow.NextStep(step)})
}
