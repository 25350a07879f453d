package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/interfaces"
	"multichat/backend/internal/model"
)

// RoomStore loads saved rooms for new sessions.
type RoomStore interface {
	ChatStore
	GetRoom(ctx context.Context, chatID int64) (*model.ChatRoom, error)
}

// PlatformLister is the settings view the session manager needs.
type PlatformLister interface {
	PlatformSource
	EnabledPlatforms(ctx context.Context) ([]model.APIType, error)
}

// SessionManager keeps the live chat sessions, keyed by a random id.
type SessionManager struct {
	rooms     RoomStore
	platforms PlatformLister
	adapters  AdapterSource
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*ChatSession
}

func NewSessionManager(rooms RoomStore, platforms PlatformLister, adapters AdapterSource, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		rooms:     rooms,
		platforms: platforms,
		adapters:  adapters,
		logger:    logger,
		sessions:  make(map[string]*ChatSession),
	}
}

// Open starts a session. A saved chat keeps the backends it was created with;
// a new chat uses the requested backends or, if none, the enabled ones.
func (m *SessionManager) Open(ctx context.Context, chatID int64, platforms []model.APIType) (interfaces.Session, error) {
	var room model.ChatRoom
	var messages []model.Message

	if chatID > 0 {
		saved, err := m.rooms.GetRoom(ctx, chatID)
		if err != nil {
			return nil, err
		}
		room = *saved
		room.EnabledPlatforms = model.UniqueAPITypes(room.EnabledPlatforms)
		messages, err = m.rooms.FetchMessages(ctx, chatID)
		if err != nil {
			return nil, err
		}
	} else {
		if len(platforms) == 0 {
			enabled, err := m.platforms.EnabledPlatforms(ctx)
			if err != nil {
				return nil, err
			}
			platforms = enabled
		}
		platforms = model.UniqueAPITypes(platforms)
		if len(platforms) == 0 {
			return nil, fmt.Errorf("%w: no platforms are enabled, run setup first", app_errors.ErrValidation)
		}
		room = model.ChatRoom{Title: model.DefaultChatTitle, EnabledPlatforms: platforms}
	}

	id := uuid.NewString()
	session := NewChatSession(id, room, messages, SessionDeps{
		Chats:     m.rooms,
		Platforms: m.platforms,
		Adapters:  m.adapters,
		Logger:    m.logger,
	})

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	m.logger.Info("Opened chat session", "session_id", id, "chat_id", room.ID, "platforms", model.JoinAPITypes(room.EnabledPlatforms))
	return session, nil
}

func (m *SessionManager) Get(sessionID string) (interfaces.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, app_errors.ErrNotFound)
	}
	return session, nil
}

func (m *SessionManager) Close(sessionID string) error {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, app_errors.ErrNotFound)
	}
	session.Close()
	m.logger.Info("Closed chat session", "session_id", sessionID)
	return nil
}

// CloseAll stops every session. Used at shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*ChatSession)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *ChatSession) {
			defer wg.Done()
			s.Close()
		}(s)
	}
	wg.Wait()
	if len(sessions) > 0 {
		m.logger.Info("Closed all chat sessions", "count", len(sessions))
	}
}
