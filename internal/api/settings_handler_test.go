package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"multichat/backend/internal/api"
	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/interfaces/mocks"
	"multichat/backend/internal/model"
)

func setupSettingsHandler(t *testing.T) (*api.SettingsHandler, *mocks.MockSettingsService) {
	mockSettingsSvc := mocks.NewMockSettingsService(t)
	return api.NewSettingsHandler(mockSettingsSvc), mockSettingsSvc
}

func TestSettingsHandler_GetPlatforms(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc := setupSettingsHandler(t)
		platforms := []model.Platform{{Name: model.APIOllama, Enabled: true, APIURL: "http://localhost:11434"}}
		mockSvc.On("FetchPlatforms", mock.Anything).Return(platforms, nil).Once()

		rr := httptest.NewRecorder()
		handler.GetPlatforms(rr, httptest.NewRequest(http.MethodGet, "/api/v1/settings/platforms", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var returned []model.Platform
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &returned))
		assert.Equal(t, platforms, returned)
	})

	t.Run("Failure", func(t *testing.T) {
		handler, mockSvc := setupSettingsHandler(t)
		mockSvc.On("FetchPlatforms", mock.Anything).Return(nil, app_errors.ErrInternal).Once()

		rr := httptest.NewRecorder()
		handler.GetPlatforms(rr, httptest.NewRequest(http.MethodGet, "/api/v1/settings/platforms", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestSettingsHandler_UpdatePlatforms(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc := setupSettingsHandler(t)
		body := `{"platforms":[{"name":"ollama","enabled":true,"api_url":"http://localhost:11434","temperature":0.7}]}`
		mockSvc.On("UpdatePlatforms", mock.Anything, mock.MatchedBy(func(ps []model.Platform) bool {
			return len(ps) == 1 && ps[0].Name == model.APIOllama && ps[0].Enabled &&
				ps[0].Temperature != nil && *ps[0].Temperature == 0.7 && ps[0].TopP == nil
		})).Return(nil).Once()

		rr := httptest.NewRecorder()
		handler.UpdatePlatforms(rr, httptest.NewRequest(http.MethodPut, "/api/v1/settings/platforms", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Validation Error", func(t *testing.T) {
		handler, _ := setupSettingsHandler(t)
		body := `{"platforms":[{"name":"ollama","top_p":3}]}`

		rr := httptest.NewRecorder()
		handler.UpdatePlatforms(rr, httptest.NewRequest(http.MethodPut, "/api/v1/settings/platforms", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "field 'top_p' failed on 'lte=1'")
	})

	t.Run("Failure - Invalid JSON", func(t *testing.T) {
		handler, _ := setupSettingsHandler(t)

		rr := httptest.NewRecorder()
		handler.UpdatePlatforms(rr, httptest.NewRequest(http.MethodPut, "/api/v1/settings/platforms", strings.NewReader(`{invalid`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSettingsHandler_Theme(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		handler, mockSvc := setupSettingsHandler(t)
		theme := model.ThemeSetting{DynamicTheme: model.DynamicThemeOn, ThemeMode: model.ThemeModeDark}
		mockSvc.On("FetchTheme", mock.Anything).Return(theme, nil).Once()

		rr := httptest.NewRecorder()
		handler.GetTheme(rr, httptest.NewRequest(http.MethodGet, "/api/v1/settings/theme", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"dynamic_theme":1,"theme_mode":2}`, rr.Body.String())
	})

	t.Run("Update", func(t *testing.T) {
		handler, mockSvc := setupSettingsHandler(t)
		mockSvc.On("UpdateTheme", mock.Anything, model.ThemeSetting{ThemeMode: model.ThemeModeLight}).Return(nil).Once()

		rr := httptest.NewRecorder()
		handler.UpdateTheme(rr, httptest.NewRequest(http.MethodPut, "/api/v1/settings/theme", strings.NewReader(`{"dynamic_theme":0,"theme_mode":1}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Update - Out of range", func(t *testing.T) {
		handler, _ := setupSettingsHandler(t)

		rr := httptest.NewRecorder()
		handler.UpdateTheme(rr, httptest.NewRequest(http.MethodPut, "/api/v1/settings/theme", strings.NewReader(`{"theme_mode":5}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Update - Store failure", func(t *testing.T) {
		handler, mockSvc := setupSettingsHandler(t)
		mockSvc.On("UpdateTheme", mock.Anything, mock.Anything).Return(errors.New("database is locked")).Once()

		rr := httptest.NewRecorder()
		handler.UpdateTheme(rr, httptest.NewRequest(http.MethodPut, "/api/v1/settings/theme", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
