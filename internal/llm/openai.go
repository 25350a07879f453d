package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"multichat/backend/internal/model"
)

// placeholderToken is sent when no token is configured. The OpenAI client
// refuses an empty token and Ollama ignores the value.
const placeholderToken = "ollama"

// ModelFactory builds a chat model for one request.
type ModelFactory func(platform model.Platform) (llms.Model, error)

// RemoteAdapter streams completions from an OpenAI-compatible server such as
// Ollama's /v1 endpoint.
type RemoteAdapter struct {
	api     model.APIType
	factory ModelFactory
}

func NewRemoteAdapter(api model.APIType) *RemoteAdapter {
	return &RemoteAdapter{api: api, factory: newOpenAIModel}
}

// NewRemoteAdapterWithFactory is used by tests to substitute the model.
func NewRemoteAdapterWithFactory(api model.APIType, factory ModelFactory) *RemoteAdapter {
	return &RemoteAdapter{api: api, factory: factory}
}

func newOpenAIModel(platform model.Platform) (llms.Model, error) {
	token := placeholderToken
	if platform.Token != nil && *platform.Token != "" {
		token = *platform.Token
	}
	opts := []openai.Option{
		openai.WithBaseURL(strings.TrimRight(platform.APIURL, "/") + "/v1"),
		openai.WithToken(token),
	}
	if platform.Model != nil && *platform.Model != "" {
		opts = append(opts, openai.WithModel(*platform.Model))
	}
	return openai.New(opts...)
}

func (a *RemoteAdapter) StreamCompletion(ctx context.Context, question model.Message, history []model.Message, platform model.Platform) <-chan model.APIState {
	return Stream(ctx, func(emit func(string)) error {
		if strings.TrimSpace(platform.APIURL) == "" {
			return fmt.Errorf("no API URL configured for %s", a.api)
		}
		client, err := a.factory(platform)
		if err != nil {
			return fmt.Errorf("create %s client: %w", a.api, err)
		}

		turns := BuildTurns(a.api, question, history, platform)
		messages := make([]llms.MessageContent, 0, len(turns))
		for _, t := range turns {
			messages = append(messages, llms.TextParts(messageType(t.Role), t.Content))
		}

		opts := []llms.CallOption{
			llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
				emit(string(chunk))
				return nil
			}),
		}
		if platform.Temperature != nil {
			opts = append(opts, llms.WithTemperature(*platform.Temperature))
		}
		if platform.TopP != nil {
			opts = append(opts, llms.WithTopP(*platform.TopP))
		}

		if _, err := client.GenerateContent(ctx, messages, opts...); err != nil {
			return err
		}
		return nil
	})
}

func messageType(role Role) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
