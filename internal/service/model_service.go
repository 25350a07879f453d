package service

import (
	"context"
	"fmt"
	"strings"

	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/llm"
)

// ModelRuntime is the part of the local runtime used for model management.
type ModelRuntime interface {
	ListModels(ctx context.Context) (*llm.ListModelsResponse, error)
	PullModel(ctx context.Context, req *llm.PullModelRequest, ch chan<- llm.PullStatus) error
}

// ModelService manages the models available to the on-device backend.
type ModelService struct {
	runtime ModelRuntime
}

func NewModelService(runtime ModelRuntime) *ModelService {
	return &ModelService{runtime: runtime}
}

// List returns the locally available models.
func (s *ModelService) List(ctx context.Context) (*llm.ListModelsResponse, error) {
	models, err := s.runtime.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list models: %w", err)
	}
	return models, nil
}

// Catalog returns the names of the local models, used as setup defaults.
func (s *ModelService) Catalog(ctx context.Context) ([]string, error) {
	models, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Pull downloads a model and streams progress on ch, which is always closed.
func (s *ModelService) Pull(ctx context.Context, req *llm.PullModelRequest, ch chan<- llm.PullStatus) error {
	if strings.TrimSpace(req.Name) == "" {
		close(ch)
		return fmt.Errorf("%w: model name is required", app_errors.ErrValidation)
	}
	return s.runtime.PullModel(ctx, req, ch)
}
