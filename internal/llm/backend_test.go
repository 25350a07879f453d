package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multichat/backend/internal/model"
)

func collect(ch <-chan model.APIState) []model.APIState {
	var states []model.APIState
	for st := range ch {
		states = append(states, st)
	}
	return states
}

func TestStream(t *testing.T) {
	t.Run("Success chunks then Done", func(t *testing.T) {
		states := collect(Stream(context.Background(), func(emit func(string)) error {
			emit("2 + 2")
			emit("")
			emit(" = 4")
			return nil
		}))

		assert.Equal(t, []model.APIState{
			model.Loading(),
			model.Success("2 + 2"),
			model.Success(" = 4"),
			model.Done(),
		}, states)
	})

	t.Run("Producer error becomes Error then Done", func(t *testing.T) {
		states := collect(Stream(context.Background(), func(emit func(string)) error {
			emit("partial")
			return errors.New("connection reset")
		}))

		assert.Equal(t, []model.APIState{
			model.Loading(),
			model.Success("partial"),
			model.Failure("connection reset"),
			model.Done(),
		}, states)
	})

	t.Run("Channel closes when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ch := Stream(ctx, func(emit func(string)) error {
			<-ctx.Done()
			return ctx.Err()
		})

		// Draining must terminate; the exact events are best effort.
		states := collect(ch)
		assert.LessOrEqual(t, len(states), 3)
	})
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	remote := NewRemoteAdapter(model.APIOllama)
	registry.Register(model.APIOllama, remote)

	adapter, err := registry.Get(model.APIOllama)
	require.NoError(t, err)
	assert.Same(t, remote, adapter)

	_, err = registry.Get(model.APIOnDevice)
	assert.ErrorIs(t, err, ErrUnknownBackend)

	assert.Equal(t, []model.APIType{model.APIOllama}, registry.Types())
}

func TestBuildTurns(t *testing.T) {
	history := []model.Message{
		{ID: 1, Content: "What is 2+2?"},
		{ID: 2, Content: "4", Platform: model.APIOllama},
		{ID: 3, Content: "Four", Platform: model.APIOnDevice},
	}
	question := model.Message{Content: "And 3+3?"}

	t.Run("Default prompt and own answers only", func(t *testing.T) {
		turns := BuildTurns(model.APIOllama, question, history, model.Platform{})

		assert.Equal(t, []Turn{
			{Role: RoleSystem, Content: DefaultPrompt},
			{Role: RoleUser, Content: "What is 2+2?"},
			{Role: RoleAssistant, Content: "4"},
			{Role: RoleUser, Content: "And 3+3?"},
		}, turns)
	})

	t.Run("Platform prompt wins", func(t *testing.T) {
		prompt := "Be brief."
		turns := BuildTurns(model.APIOnDevice, question, history, model.Platform{SystemPrompt: &prompt})

		assert.Equal(t, "Be brief.", turns[0].Content)
		assert.Equal(t, Turn{Role: RoleAssistant, Content: "Four"}, turns[2])
	})
}

func TestRenderPrompt(t *testing.T) {
	prompt := RenderPrompt([]Turn{
		{Role: RoleUser, Content: "What is 2+2?"},
		{Role: RoleAssistant, Content: "4"},
		{Role: RoleUser, Content: "And 3+3?"},
	})

	assert.Equal(t, "user: What is 2+2?\nmodel: 4\nuser: And 3+3?\nmodel: ", prompt)
}
