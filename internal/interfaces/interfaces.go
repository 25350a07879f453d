package interfaces

import (
	"context"

	"multichat/backend/internal/llm"
	"multichat/backend/internal/model"
)

// This file defines the interfaces for our core services.
// The API layer and the CLI depend on these rather than on concrete types,
// which keeps them decoupled from the service layer and easy to mock.

// ChatService defines the contract for stored chats.
type ChatService interface {
	ListRooms(ctx context.Context) ([]model.ChatRoom, error)
	GetFullChat(ctx context.Context, chatID int64) (*model.FullChat, error)
	DeleteChats(ctx context.Context, chatIDs []int64) error
}

// Session is one live chat orchestrator.
type Session interface {
	ID() string
	Ask(ctx context.Context, text string) error
	UpdateQuestion(ctx context.Context, text string) error
	Retry(ctx context.Context, message model.Message) error
	Edit(ctx context.Context, message model.Message) error
	UpdateTitle(ctx context.Context, title string) error
	Export(ctx context.Context) (filename string, markdown string, err error)
	Snapshot(ctx context.Context) (model.SessionSnapshot, error)
	// Subscribe delivers the latest snapshot after every change until ctx is
	// done or the session closes, then closes the channel.
	Subscribe(ctx context.Context) (<-chan model.SessionSnapshot, error)
	Close()
}

// SessionManager opens and tracks live sessions.
type SessionManager interface {
	// Open starts a session for a saved chat, or for a new chat when chatID
	// is 0. platforms only applies to new chats.
	Open(ctx context.Context, chatID int64, platforms []model.APIType) (Session, error)
	Get(sessionID string) (Session, error)
	Close(sessionID string) error
}

// SettingsService defines the contract for platform and theme settings.
type SettingsService interface {
	FetchPlatforms(ctx context.Context) ([]model.Platform, error)
	UpdatePlatforms(ctx context.Context, platforms []model.Platform) error
	FetchTheme(ctx context.Context) (model.ThemeSetting, error)
	UpdateTheme(ctx context.Context, theme model.ThemeSetting) error
}

// ModelService defines the contract for on-device model management.
type ModelService interface {
	List(ctx context.Context) (*llm.ListModelsResponse, error)
	Pull(ctx context.Context, req *llm.PullModelRequest, ch chan<- llm.PullStatus) error
}
