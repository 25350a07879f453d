package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/llm"
	"multichat/backend/internal/model"
	"multichat/backend/internal/service"
)

func TestSessionManager_OpenNewChat(t *testing.T) {
	ctx := context.Background()
	manager := service.NewSessionManager(setupStore(t), allPlatforms(), registry(nil), nil)
	defer manager.CloseAll()

	t.Run("Defaults to the enabled platforms", func(t *testing.T) {
		session, err := manager.Open(ctx, 0, nil)
		require.NoError(t, err)

		snap, err := session.Snapshot(ctx)
		require.NoError(t, err)
		assert.Zero(t, snap.Room.ID)
		assert.Equal(t, model.DefaultChatTitle, snap.Room.Title)
		assert.Equal(t, []model.APIType{model.APIOllama, model.APIOnDevice}, snap.Room.EnabledPlatforms)
		assert.True(t, snap.Idle)
	})

	t.Run("Uses the requested platforms", func(t *testing.T) {
		session, err := manager.Open(ctx, 0, []model.APIType{model.APIOnDevice})
		require.NoError(t, err)

		snap, err := session.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.APIType{model.APIOnDevice}, snap.Room.EnabledPlatforms)
		assert.Equal(t, map[model.APIType]model.LoadingState{model.APIOnDevice: model.LoadingIdle}, snap.Loading)
	})

	t.Run("Repeated platforms answer once", func(t *testing.T) {
		store := setupStore(t)
		answering := service.NewSessionManager(store, allPlatforms(), registry(map[model.APIType]llm.Adapter{
			model.APIOllama: &answeringAdapter{chunks: []string{"4"}},
		}), nil)
		defer answering.CloseAll()

		opened, err := answering.Open(ctx, 0, []model.APIType{model.APIOllama, model.APIOllama})
		require.NoError(t, err)
		session := opened.(*service.ChatSession)
		assert.Equal(t, []model.APIType{model.APIOllama}, snapshot(t, session).Room.EnabledPlatforms)

		require.NoError(t, session.Ask(ctx, "What is 2+2?"))
		snap := waitFor(t, session, func(s model.SessionSnapshot) bool { return s.Idle && s.Room.ID != 0 })
		assert.Equal(t, []string{":What is 2+2?", "ollama:4"}, contents(snap.Messages))

		saved, err := store.FetchMessages(ctx, snap.Room.ID)
		require.NoError(t, err)
		assert.Len(t, saved, 2)
	})

	t.Run("Fails when nothing is enabled", func(t *testing.T) {
		empty := service.NewSessionManager(setupStore(t), &staticPlatforms{}, registry(nil), nil)
		_, err := empty.Open(ctx, 0, nil)
		assert.ErrorIs(t, err, app_errors.ErrValidation)
	})
}

func TestSessionManager_OpenSavedChat(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	room, err := store.SaveChat(ctx, model.ChatRoom{EnabledPlatforms: []model.APIType{model.APIOllama}}, []model.Message{
		{Content: "hello", CreatedAt: 1},
		{Content: "hi there", Platform: model.APIOllama, CreatedAt: 1},
	})
	require.NoError(t, err)

	manager := service.NewSessionManager(store, allPlatforms(), registry(nil), nil)
	defer manager.CloseAll()

	session, err := manager.Open(ctx, room.ID, []model.APIType{model.APIOnDevice})
	require.NoError(t, err)

	snap, err := session.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, room.ID, snap.Room.ID)
	assert.Equal(t, "hello", snap.Room.Title)
	assert.Equal(t, []model.APIType{model.APIOllama}, snap.Room.EnabledPlatforms, "saved chats keep their backends")
	assert.Equal(t, []string{":hello", "ollama:hi there"}, contents(snap.Messages))

	_, err = manager.Open(ctx, room.ID+100, nil)
	assert.ErrorIs(t, err, app_errors.ErrNotFound)
}

func TestSessionManager_GetAndClose(t *testing.T) {
	ctx := context.Background()
	manager := service.NewSessionManager(setupStore(t), allPlatforms(), registry(map[model.APIType]llm.Adapter{
		model.APIOllama: &answeringAdapter{chunks: []string{"hi"}},
	}), nil)

	session, err := manager.Open(ctx, 0, []model.APIType{model.APIOllama})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID())

	got, err := manager.Get(session.ID())
	require.NoError(t, err)
	assert.Same(t, session, got)

	require.NoError(t, manager.Close(session.ID()))

	_, err = manager.Get(session.ID())
	assert.ErrorIs(t, err, app_errors.ErrNotFound)
	assert.ErrorIs(t, manager.Close(session.ID()), app_errors.ErrNotFound)
	_, err = session.Snapshot(ctx)
	assert.ErrorIs(t, err, app_errors.ErrNotFound)
}

func TestSessionManager_CloseAll(t *testing.T) {
	ctx := context.Background()
	manager := service.NewSessionManager(setupStore(t), allPlatforms(), registry(nil), nil)

	first, err := manager.Open(ctx, 0, nil)
	require.NoError(t, err)
	second, err := manager.Open(ctx, 0, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())

	manager.CloseAll()

	for _, s := range []interface{ ID() string }{first, second} {
		_, err := manager.Get(s.ID())
		assert.ErrorIs(t, err, app_errors.ErrNotFound)
	}
}
