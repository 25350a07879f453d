package repository

import (
	"context"

	"multichat/backend/internal/model"
)

// ChatRepository is the conversation store. Bulk operations run in a single
// transaction each.
type ChatRepository interface {
	ListRooms(ctx context.Context) ([]model.ChatRoom, error)
	GetRoom(ctx context.Context, chatID int64) (*model.ChatRoom, error)
	InsertRoom(ctx context.Context, room model.ChatRoom) (int64, error)
	UpdateRoom(ctx context.Context, room model.ChatRoom) error
	DeleteRooms(ctx context.Context, chatIDs []int64) error

	LoadMessages(ctx context.Context, chatID int64) ([]model.Message, error)
	InsertMessages(ctx context.Context, messages []model.Message) error
	UpdateMessages(ctx context.Context, messages []model.Message) error
	DeleteMessages(ctx context.Context, messageIDs []int64) error
}

// SettingsRepository is a flat key/value store.
type SettingsRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	SetMany(ctx context.Context, values map[string]string) error
}
