package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/model"
	"multichat/backend/internal/repository"
)

// ChatService persists chat rooms and their transcripts.
type ChatService struct {
	repo repository.ChatRepository
	now  func() time.Time
}

func NewChatService(repo repository.ChatRepository) *ChatService {
	return &ChatService{repo: repo, now: time.Now}
}

// ListRooms returns every chat room, most recently updated first.
func (s *ChatService) ListRooms(ctx context.Context) ([]model.ChatRoom, error) {
	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list chats: %w", err)
	}
	return rooms, nil
}

func (s *ChatService) GetRoom(ctx context.Context, chatID int64) (*model.ChatRoom, error) {
	room, err := s.repo.GetRoom(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("chat %d: %w", chatID, app_errors.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get chat: %w", err)
	}
	return room, nil
}

// FetchMessages returns the saved transcript of a room in display order.
func (s *ChatService) FetchMessages(ctx context.Context, chatID int64) ([]model.Message, error) {
	messages, err := s.repo.LoadMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("could not load messages: %w", err)
	}
	return messages, nil
}

// GetFullChat retrieves a chat's metadata and all its messages.
func (s *ChatService) GetFullChat(ctx context.Context, chatID int64) (*model.FullChat, error) {
	room, err := s.GetRoom(ctx, chatID)
	if err != nil {
		return nil, err
	}
	messages, err := s.FetchMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return &model.FullChat{ChatRoom: *room, Messages: messages}, nil
}

// UpdateChatTitle handles the logic for manually renaming a chat.
func (s *ChatService) UpdateChatTitle(ctx context.Context, chatID int64, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title cannot be empty", app_errors.ErrValidation)
	}
	room, err := s.GetRoom(ctx, chatID)
	if err != nil {
		return err
	}
	room.Title = model.NormalizeTitle(title)
	room.UpdatedAt = s.now().Unix()

	slog.Info("Updating chat title", "chat_id", chatID, "title", room.Title)
	if err := s.repo.UpdateRoom(ctx, *room); err != nil {
		return fmt.Errorf("could not update chat title: %w", err)
	}
	return nil
}

// DeleteChats removes the rooms and their messages.
func (s *ChatService) DeleteChats(ctx context.Context, chatIDs []int64) error {
	if len(chatIDs) == 0 {
		return nil
	}
	slog.Info("Deleting chats", "chat_ids", chatIDs)
	if err := s.repo.DeleteRooms(ctx, chatIDs); err != nil {
		return fmt.Errorf("could not delete chats: %w", err)
	}
	return nil
}

// GenerateDefaultChatTitle derives a title from the first message.
func (s *ChatService) GenerateDefaultChatTitle(messages []model.Message) string {
	if len(messages) == 0 || strings.TrimSpace(messages[0].Content) == "" {
		return model.DefaultChatTitle
	}
	return model.NormalizeTitle(messages[0].Content)
}

// SaveChat writes a room and its full transcript.
//
// An unsaved room (ID 0) is inserted together with all messages and gets its
// title from the first message. For a saved room the transcript is diffed
// against the stored one by message id: rows that disappeared are deleted,
// rows whose fields changed are updated and rows without a stored counterpart
// are inserted. The returned room carries the persisted id.
func (s *ChatService) SaveChat(ctx context.Context, room model.ChatRoom, messages []model.Message) (model.ChatRoom, error) {
	now := s.now().Unix()
	room.UpdatedAt = now

	if room.ID == 0 {
		if room.CreatedAt == 0 {
			room.CreatedAt = now
		}
		if room.Title == "" {
			room.Title = model.DefaultChatTitle
		}
		id, err := s.repo.InsertRoom(ctx, room)
		if err != nil {
			return room, fmt.Errorf("could not create chat: %w", err)
		}
		room.ID = id

		if err := s.repo.InsertMessages(ctx, stampChatID(messages, id)); err != nil {
			return room, fmt.Errorf("could not save messages: %w", err)
		}

		if len(messages) > 0 {
			room.Title = s.GenerateDefaultChatTitle(messages)
			if err := s.repo.UpdateRoom(ctx, room); err != nil {
				return room, fmt.Errorf("could not set chat title: %w", err)
			}
		}
		slog.Info("Created chat", "chat_id", room.ID, "messages", len(messages))
		return room, nil
	}

	saved, err := s.repo.LoadMessages(ctx, room.ID)
	if err != nil {
		return room, fmt.Errorf("could not load saved messages: %w", err)
	}
	deleted, updated, inserted := diffMessages(saved, stampChatID(messages, room.ID))

	if err := s.repo.UpdateRoom(ctx, room); err != nil {
		return room, fmt.Errorf("could not update chat: %w", err)
	}
	if err := s.repo.DeleteMessages(ctx, deleted); err != nil {
		return room, fmt.Errorf("could not delete messages: %w", err)
	}
	if err := s.repo.UpdateMessages(ctx, updated); err != nil {
		return room, fmt.Errorf("could not update messages: %w", err)
	}
	if err := s.repo.InsertMessages(ctx, inserted); err != nil {
		return room, fmt.Errorf("could not insert messages: %w", err)
	}

	slog.Debug("Saved chat", "chat_id", room.ID, "deleted", len(deleted), "updated", len(updated), "inserted", len(inserted))
	return room, nil
}

func stampChatID(messages []model.Message, chatID int64) []model.Message {
	out := make([]model.Message, len(messages))
	for i, m := range messages {
		m.ChatID = chatID
		out[i] = m
	}
	return out
}

// diffMessages splits current against saved by id. Unsaved messages (id 0)
// are always inserted.
func diffMessages(saved, current []model.Message) (deleted []int64, updated, inserted []model.Message) {
	savedByID := make(map[int64]model.Message, len(saved))
	for _, m := range saved {
		savedByID[m.ID] = m
	}
	seen := make(map[int64]bool, len(current))
	for _, m := range current {
		old, ok := savedByID[m.ID]
		switch {
		case m.ID == 0 || !ok:
			inserted = append(inserted, m)
		case old != m:
			updated = append(updated, m)
		}
		if m.ID != 0 {
			seen[m.ID] = true
		}
	}
	for _, m := range saved {
		if !seen[m.ID] {
			deleted = append(deleted, m.ID)
		}
	}
	return deleted, updated, inserted
}
