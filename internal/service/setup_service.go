package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/model"
)

// SetupStep names one onboarding screen.
type SetupStep string

const (
	StepSelectPlatform     SetupStep = "select_platform"
	StepTokenInput         SetupStep = "token_input"
	StepOllamaModelSelect  SetupStep = "ollama_model_select"
	StepOllamaAPIAddress   SetupStep = "ollama_api_address"
	StepOnDeviceModel      SetupStep = "tf_lite_model_select"
	StepOnDeviceAPIAddress SetupStep = "tf_lite_api_address"
	StepSetupComplete      SetupStep = "setup_complete"
	StepChatList           SetupStep = "chat_list"
)

var setupSteps = []SetupStep{
	StepSelectPlatform,
	StepTokenInput,
	StepOllamaModelSelect,
	StepOllamaAPIAddress,
	StepOnDeviceModel,
	StepOnDeviceAPIAddress,
	StepSetupComplete,
}

// platformSteps are only shown when their backend is selected.
var platformSteps = map[SetupStep]model.APIType{
	StepOllamaModelSelect:  model.APIOllama,
	StepOllamaAPIAddress:   model.APIOllama,
	StepOnDeviceModel:      model.APIOnDevice,
	StepOnDeviceAPIAddress: model.APIOnDevice,
}

// PlatformSaver persists platform settings.
type PlatformSaver interface {
	UpdatePlatforms(ctx context.Context, platforms []model.Platform) error
}

var setupValidate = validator.New()

// SetupFlow sequences onboarding and collects the platform configuration.
type SetupFlow struct {
	saver    PlatformSaver
	catalogs map[model.APIType][]string

	mu        sync.Mutex
	platforms []model.Platform
}

// NewSetupFlow starts onboarding with every backend unselected. catalogs
// lists the model names offered per backend, in order.
func NewSetupFlow(saver PlatformSaver, catalogs map[model.APIType][]string) *SetupFlow {
	platforms := make([]model.Platform, 0, len(model.APITypes()))
	for _, api := range model.APITypes() {
		platforms = append(platforms, model.Platform{Name: api})
	}
	return &SetupFlow{saver: saver, catalogs: catalogs, platforms: platforms}
}

// Platforms returns a copy of the current onboarding state.
func (f *SetupFlow) Platforms() []model.Platform {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.platforms)
}

func (f *SetupFlow) update(api model.APIType, fn func(p *model.Platform)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.platforms {
		if f.platforms[i].Name == api {
			fn(&f.platforms[i])
			return
		}
	}
}

func (f *SetupFlow) SetAPIURL(api model.APIType, address string) {
	f.update(api, func(p *model.Platform) { p.APIURL = strings.TrimSpace(address) })
}

func (f *SetupFlow) ToggleSelected(api model.APIType) {
	f.update(api, func(p *model.Platform) { p.Selected = !p.Selected })
}

// SetToken stores the credential; a blank token clears it.
func (f *SetupFlow) SetToken(api model.APIType, token string) {
	f.update(api, func(p *model.Platform) {
		if strings.TrimSpace(token) == "" {
			p.Token = nil
			return
		}
		p.Token = &token
	})
}

func (f *SetupFlow) SetModel(api model.APIType, modelName string) {
	f.update(api, func(p *model.Platform) { p.Model = &modelName })
}

// SetDefaultModel picks the index-th catalog entry for api and returns it, or
// "" when the catalog is too short.
func (f *SetupFlow) SetDefaultModel(api model.APIType, index int) string {
	catalog := f.catalogs[api]
	if index < 0 || index >= len(catalog) {
		return ""
	}
	f.SetModel(api, catalog[index])
	return catalog[index]
}

// NextStep returns the screen after current. Unknown steps restart at the
// beginning and StepChatList follows the last step.
func (f *SetupFlow) NextStep(current SetupStep) SetupStep {
	f.mu.Lock()
	selected := make(map[model.APIType]bool)
	for _, p := range f.platforms {
		if p.Selected {
			selected[p.Name] = true
		}
	}
	f.mu.Unlock()

	skipToken := len(selected) == 1 && selected[model.APIOllama]
	currentIndex := slices.Index(setupSteps, current)

	for i := currentIndex + 1; i < len(setupSteps); i++ {
		step := setupSteps[i]
		if api, ok := platformSteps[step]; ok {
			if selected[api] {
				return step
			}
			continue
		}
		if step == StepTokenInput && skipToken {
			continue
		}
		return step
	}
	return StepChatList
}

type setupPlatform struct {
	Name   model.APIType `validate:"required,oneof=ollama on_device"`
	APIURL string        `validate:"omitempty,url"`
}

// Save enables exactly the selected backends and persists the result.
func (f *SetupFlow) Save(ctx context.Context) error {
	f.mu.Lock()
	platforms := slices.Clone(f.platforms)
	f.mu.Unlock()

	anySelected := false
	for i := range platforms {
		p := &platforms[i]
		if err := setupValidate.Struct(setupPlatform{Name: p.Name, APIURL: p.APIURL}); err != nil {
			return fmt.Errorf("%w: %s: %v", app_errors.ErrValidation, p.Name, err)
		}
		if p.Selected && p.Name == model.APIOllama && p.APIURL == "" {
			return fmt.Errorf("%w: %s needs an API address", app_errors.ErrValidation, p.Name)
		}
		anySelected = anySelected || p.Selected
		p.Enabled = p.Selected
		p.Selected = false
	}
	if !anySelected {
		return fmt.Errorf("%w: select at least one platform", app_errors.ErrValidation)
	}

	if err := f.saver.UpdatePlatforms(ctx, platforms); err != nil {
		return err
	}

	f.mu.Lock()
	f.platforms = platforms
	f.mu.Unlock()
	return nil
}
