package llm

import (
	"context"
	"errors"
	"strings"

	"multichat/backend/internal/model"
)

// EngineProvider hands out the shared on-device engine.
type EngineProvider interface {
	Acquire(ctx context.Context, modelName string) (Engine, error)
}

// OnDeviceAdapter streams completions from the local engine.
type OnDeviceAdapter struct {
	api     model.APIType
	engines EngineProvider
}

func NewOnDeviceAdapter(api model.APIType, engines EngineProvider) *OnDeviceAdapter {
	return &OnDeviceAdapter{api: api, engines: engines}
}

func (a *OnDeviceAdapter) StreamCompletion(ctx context.Context, question model.Message, history []model.Message, platform model.Platform) <-chan model.APIState {
	return Stream(ctx, func(emit func(string)) error {
		if platform.Model == nil || *platform.Model == "" {
			return errors.New("no on-device model selected")
		}
		engine, err := a.engines.Acquire(ctx, *platform.Model)
		if err != nil {
			return err
		}

		turns := BuildTurns(a.api, question, history, platform)
		req := EngineRequest{
			System:      turns[0].Content,
			Prompt:      RenderPrompt(turns[1:]),
			Temperature: platform.Temperature,
			TopP:        platform.TopP,
		}
		return engine.Generate(ctx, req, emit)
	})
}

// RenderPrompt flattens turns into the role-prefixed text the on-device
// engine expects, ending with an open model turn.
func RenderPrompt(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case RoleUser:
			b.WriteString("user: ")
		case RoleAssistant:
			b.WriteString("model: ")
		default:
			continue
		}
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	b.WriteString("model: ")
	return b.String()
}
