package llm

import (
	"strings"

	"multichat/backend/internal/model"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one backend-neutral conversation entry.
type Turn struct {
	Role    Role
	Content string
}

// systemPrompt returns the platform's prompt or DefaultPrompt.
func systemPrompt(platform model.Platform) string {
	if platform.SystemPrompt != nil && strings.TrimSpace(*platform.SystemPrompt) != "" {
		return *platform.SystemPrompt
	}
	return DefaultPrompt
}

// BuildTurns converts a transcript into the conversation seen by api.
// Answers from other backends are left out so each backend only sees its own
// side of the thread. The question is appended last.
func BuildTurns(api model.APIType, question model.Message, history []model.Message, platform model.Platform) []Turn {
	turns := make([]Turn, 0, len(history)+2)
	turns = append(turns, Turn{Role: RoleSystem, Content: systemPrompt(platform)})
	for _, m := range history {
		switch {
		case m.IsUser():
			turns = append(turns, Turn{Role: RoleUser, Content: m.Content})
		case m.Platform == api:
			turns = append(turns, Turn{Role: RoleAssistant, Content: m.Content})
		}
	}
	return append(turns, Turn{Role: RoleUser, Content: question.Content})
}
