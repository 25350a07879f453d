package api

import (
	"net/http"

	"multichat/backend/internal/interfaces"
	"multichat/backend/internal/model"
)

// SettingsHandler serves platform and theme settings.
type SettingsHandler struct {
	settings interfaces.SettingsService
}

func NewSettingsHandler(settings interfaces.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// PlatformRequest is one backend's configuration as sent by the client.
type PlatformRequest struct {
	Name         model.APIType `json:"name" validate:"required,oneof=ollama on_device"`
	Enabled      bool          `json:"enabled"`
	APIURL       string        `json:"api_url" validate:"omitempty,url"`
	Token        *string       `json:"token,omitempty"`
	Model        *string       `json:"model,omitempty"`
	Temperature  *float64      `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	TopP         *float64      `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	SystemPrompt *string       `json:"system_prompt,omitempty"`
}

// UpdatePlatformsRequest replaces the stored platform settings.
type UpdatePlatformsRequest struct {
	Platforms []PlatformRequest `json:"platforms" validate:"required,min=1,dive"`
}

// ThemeRequest is the appearance preference.
type ThemeRequest struct {
	DynamicTheme model.DynamicTheme `json:"dynamic_theme" validate:"gte=0,lte=1"`
	ThemeMode    model.ThemeMode    `json:"theme_mode" validate:"gte=0,lte=2"`
}

// GetPlatforms godoc
// @Summary      Get platform settings
// @Tags         Settings
// @Produce      json
// @Success      200  {array}   model.Platform
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/settings/platforms [get]
func (h *SettingsHandler) GetPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.settings.FetchPlatforms(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, platforms)
}

// UpdatePlatforms godoc
// @Summary      Update platform settings
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        request  body      UpdatePlatformsRequest  true  "Platforms"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /v1/settings/platforms [put]
func (h *SettingsHandler) UpdatePlatforms(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlatformsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	platforms := make([]model.Platform, 0, len(req.Platforms))
	for _, p := range req.Platforms {
		platforms = append(platforms, model.Platform{
			Name:         p.Name,
			Enabled:      p.Enabled,
			APIURL:       p.APIURL,
			Token:        p.Token,
			Model:        p.Model,
			Temperature:  p.Temperature,
			TopP:         p.TopP,
			SystemPrompt: p.SystemPrompt,
		})
	}
	if err := h.settings.UpdatePlatforms(r.Context(), platforms); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// GetTheme godoc
// @Summary      Get theme
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  model.ThemeSetting
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/settings/theme [get]
func (h *SettingsHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.settings.FetchTheme(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, theme)
}

// UpdateTheme godoc
// @Summary      Update theme
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        request  body      ThemeRequest  true  "Theme"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /v1/settings/theme [put]
func (h *SettingsHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	theme := model.ThemeSetting{DynamicTheme: req.DynamicTheme, ThemeMode: req.ThemeMode}
	if err := h.settings.UpdateTheme(r.Context(), theme); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}
