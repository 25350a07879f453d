package model

import (
	"fmt"
	"strings"
)

// APIType identifies a model-serving backend.
type APIType string

const (
	// APIOllama is the remote OpenAI-compatible model server.
	APIOllama APIType = "ollama"
	// APIOnDevice is the local inference engine.
	APIOnDevice APIType = "on_device"
)

// APITypes returns every known backend in display order.
func APITypes() []APIType {
	return []APIType{APIOllama, APIOnDevice}
}

// ParseAPIType validates a backend identifier.
func ParseAPIType(s string) (APIType, error) {
	for _, t := range APITypes() {
		if string(t) == strings.TrimSpace(s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown api type %q", s)
}

// ParseAPITypes parses a comma separated list such as "ollama,on_device".
// Repeated backends are kept once, in first-seen order.
func ParseAPITypes(s string) ([]APIType, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	types := make([]APIType, 0, len(parts))
	for _, p := range parts {
		t, err := ParseAPIType(p)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return UniqueAPITypes(types), nil
}

// UniqueAPITypes drops repeated backends, keeping the first occurrence.
// A room answers once per backend, so its list must not repeat.
func UniqueAPITypes(types []APIType) []APIType {
	if types == nil {
		return nil
	}
	seen := make(map[APIType]bool, len(types))
	out := make([]APIType, 0, len(types))
	for _, t := range types {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// JoinAPITypes is the inverse of ParseAPITypes.
func JoinAPITypes(types []APIType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// MaxTitleLength is the number of runes kept in a chat title.
const MaxTitleLength = 50

// DefaultChatTitle is used for rooms that have not been saved yet.
const DefaultChatTitle = "Untitled Chat"

// NormalizeTitle collapses newlines to spaces and truncates to MaxTitleLength runes.
func NormalizeTitle(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > MaxTitleLength {
		return string(runes[:MaxTitleLength])
	}
	return s
}

// ChatRoom stores metadata about a conversation.
type ChatRoom struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	EnabledPlatforms []APIType `json:"enabled_platforms"`
	CreatedAt        int64     `json:"created_at"`
	UpdatedAt        int64     `json:"updated_at"`
}

// Message stores a single message in a chat.
// An empty Platform marks the user's message.
type Message struct {
	ID        int64   `json:"id"`
	ChatID    int64   `json:"chat_id"`
	Content   string  `json:"content"`
	Platform  APIType `json:"platform,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

// IsUser reports whether the message was written by the user.
func (m Message) IsUser() bool {
	return m.Platform == ""
}

// FullChat includes the chat metadata and all its messages.
type FullChat struct {
	ChatRoom
	Messages []Message `json:"messages"`
}

// Platform is the per-backend configuration.
type Platform struct {
	Name         APIType  `json:"name"`
	Enabled      bool     `json:"enabled"`
	APIURL       string   `json:"api_url"`
	Token        *string  `json:"token,omitempty"`
	Model        *string  `json:"model,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	TopP         *float64 `json:"top_p,omitempty"`
	SystemPrompt *string  `json:"system_prompt,omitempty"`

	// Selected is only used during onboarding and never persisted.
	Selected bool `json:"selected,omitempty"`
}

// DynamicTheme toggles wallpaper-derived colors.
type DynamicTheme int

const (
	DynamicThemeOff DynamicTheme = iota
	DynamicThemeOn
)

// ThemeMode selects light or dark appearance.
type ThemeMode int

const (
	ThemeModeSystem ThemeMode = iota
	ThemeModeLight
	ThemeModeDark
)

// ThemeSetting is the global appearance preference.
type ThemeSetting struct {
	DynamicTheme DynamicTheme `json:"dynamic_theme"`
	ThemeMode    ThemeMode    `json:"theme_mode"`
}
