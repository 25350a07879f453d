package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/llm"
	"multichat/backend/internal/model"
	"multichat/backend/internal/repository"
)

const (
	keyDynamicMode = "dynamic_mode"
	keyThemeMode   = "theme_mode"
)

// settingsPrefix is the key prefix of a backend in the settings table.
func settingsPrefix(api model.APIType) string {
	switch api {
	case model.APIOnDevice:
		return "tf_lite"
	default:
		return string(api)
	}
}

func settingsKey(api model.APIType, field string) string {
	return settingsPrefix(api) + "_" + field
}

// SettingsService is the platform and theme view over the settings store.
// Platforms are read fresh on every call.
type SettingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// FetchPlatforms returns the configuration of every known backend.
func (s *SettingsService) FetchPlatforms(ctx context.Context) ([]model.Platform, error) {
	values, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read settings: %w", err)
	}

	platforms := make([]model.Platform, 0, len(model.APITypes()))
	for _, api := range model.APITypes() {
		p := model.Platform{
			Name:    api,
			Enabled: values[settingsKey(api, "status")] == "true",
			APIURL:  values[settingsKey(api, "url")],
		}
		p.Token = optionalString(values, settingsKey(api, "token"))
		p.Model = optionalString(values, settingsKey(api, "model"))
		p.Temperature = optionalFloat(values, settingsKey(api, "temperature"))
		p.TopP = optionalFloat(values, settingsKey(api, "top_p"))

		prompt := llm.DefaultPrompt
		if v, ok := values[settingsKey(api, "system_prompt")]; ok {
			prompt = v
		}
		p.SystemPrompt = &prompt

		platforms = append(platforms, p)
	}
	return platforms, nil
}

// UpdatePlatforms writes every platform in one transaction. Status and URL are
// always written; optional fields only when set.
func (s *SettingsService) UpdatePlatforms(ctx context.Context, platforms []model.Platform) error {
	values := make(map[string]string)
	for _, p := range platforms {
		if _, err := model.ParseAPIType(string(p.Name)); err != nil {
			return fmt.Errorf("%w: %v", app_errors.ErrValidation, err)
		}
		values[settingsKey(p.Name, "status")] = strconv.FormatBool(p.Enabled)
		values[settingsKey(p.Name, "url")] = p.APIURL
		if p.Token != nil {
			values[settingsKey(p.Name, "token")] = *p.Token
		}
		if p.Model != nil {
			values[settingsKey(p.Name, "model")] = *p.Model
		}
		if p.Temperature != nil {
			values[settingsKey(p.Name, "temperature")] = strconv.FormatFloat(*p.Temperature, 'f', -1, 64)
		}
		if p.TopP != nil {
			values[settingsKey(p.Name, "top_p")] = strconv.FormatFloat(*p.TopP, 'f', -1, 64)
		}
		if p.SystemPrompt != nil {
			values[settingsKey(p.Name, "system_prompt")] = strings.TrimSpace(*p.SystemPrompt)
		}
	}

	if err := s.repo.SetMany(ctx, values); err != nil {
		return fmt.Errorf("could not save platforms: %w", err)
	}
	slog.Info("Platform settings saved", "platforms", len(platforms))
	return nil
}

// EnabledPlatforms returns the names of the enabled backends in display order.
func (s *SettingsService) EnabledPlatforms(ctx context.Context) ([]model.APIType, error) {
	platforms, err := s.FetchPlatforms(ctx)
	if err != nil {
		return nil, err
	}
	var enabled []model.APIType
	for _, p := range platforms {
		if p.Enabled {
			enabled = append(enabled, p.Name)
		}
	}
	return enabled, nil
}

func (s *SettingsService) FetchTheme(ctx context.Context) (model.ThemeSetting, error) {
	values, err := s.repo.GetAll(ctx)
	if err != nil {
		return model.ThemeSetting{}, fmt.Errorf("could not read settings: %w", err)
	}
	theme := model.ThemeSetting{DynamicTheme: model.DynamicThemeOff, ThemeMode: model.ThemeModeSystem}
	if v, err := strconv.Atoi(values[keyDynamicMode]); err == nil && v >= 0 && v <= int(model.DynamicThemeOn) {
		theme.DynamicTheme = model.DynamicTheme(v)
	}
	if v, err := strconv.Atoi(values[keyThemeMode]); err == nil && v >= 0 && v <= int(model.ThemeModeDark) {
		theme.ThemeMode = model.ThemeMode(v)
	}
	return theme, nil
}

func (s *SettingsService) UpdateTheme(ctx context.Context, theme model.ThemeSetting) error {
	values := map[string]string{
		keyDynamicMode: strconv.Itoa(int(theme.DynamicTheme)),
		keyThemeMode:   strconv.Itoa(int(theme.ThemeMode)),
	}
	if err := s.repo.SetMany(ctx, values); err != nil {
		return fmt.Errorf("could not save theme: %w", err)
	}
	return nil
}

func optionalString(values map[string]string, key string) *string {
	v, ok := values[key]
	if !ok {
		return nil
	}
	return &v
}

func optionalFloat(values map[string]string, key string) *float64 {
	v, ok := values[key]
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("Ignoring malformed setting", "key", key, "value", v)
		return nil
	}
	return &f
}
