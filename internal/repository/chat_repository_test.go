package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multichat/backend/internal/database"
	"multichat/backend/internal/model"
	"multichat/backend/internal/repository"
)

func setupChatRepository(t *testing.T) repository.ChatRepository {
	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewSQLiteChatRepository(db)
}

func TestChatRepository_Rooms(t *testing.T) {
	ctx := context.Background()
	repo := setupChatRepository(t)

	// ARRANGE
	older := model.ChatRoom{Title: "Older", EnabledPlatforms: []model.APIType{model.APIOllama}, CreatedAt: 100, UpdatedAt: 100}
	newer := model.ChatRoom{Title: "Newer", EnabledPlatforms: []model.APIType{model.APIOllama, model.APIOnDevice}, CreatedAt: 200, UpdatedAt: 200}

	// ACT
	olderID, err := repo.InsertRoom(ctx, older)
	require.NoError(t, err)
	newerID, err := repo.InsertRoom(ctx, newer)
	require.NoError(t, err)

	// ASSERT
	rooms, err := repo.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, newerID, rooms[0].ID)
	assert.Equal(t, []model.APIType{model.APIOllama, model.APIOnDevice}, rooms[0].EnabledPlatforms)
	assert.Equal(t, olderID, rooms[1].ID)

	t.Run("GetRoom", func(t *testing.T) {
		room, err := repo.GetRoom(ctx, olderID)
		require.NoError(t, err)
		assert.Equal(t, "Older", room.Title)

		_, err = repo.GetRoom(ctx, 9999)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("UpdateRoom", func(t *testing.T) {
		room, err := repo.GetRoom(ctx, olderID)
		require.NoError(t, err)
		room.Title = "Renamed"
		room.UpdatedAt = 300
		require.NoError(t, repo.UpdateRoom(ctx, *room))

		got, err := repo.GetRoom(ctx, olderID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.EqualValues(t, 300, got.UpdatedAt)

		assert.ErrorIs(t, repo.UpdateRoom(ctx, model.ChatRoom{ID: 9999}), repository.ErrNotFound)
	})

	t.Run("DeleteRooms removes messages", func(t *testing.T) {
		require.NoError(t, repo.InsertMessages(ctx, []model.Message{{ChatID: newerID, Content: "hi", CreatedAt: 1}}))
		require.NoError(t, repo.DeleteRooms(ctx, []int64{newerID}))

		_, err := repo.GetRoom(ctx, newerID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		messages, err := repo.LoadMessages(ctx, newerID)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})
}

func TestChatRepository_Messages(t *testing.T) {
	ctx := context.Background()
	repo := setupChatRepository(t)
	chatID, err := repo.InsertRoom(ctx, model.ChatRoom{Title: "t", CreatedAt: 1, UpdatedAt: 1})
	require.NoError(t, err)

	input := []model.Message{
		{ChatID: chatID, Content: "What is 2+2?", CreatedAt: 10},
		{ChatID: chatID, Content: "4", Platform: model.APIOllama, CreatedAt: 10},
		{ChatID: chatID, Content: "Four", Platform: model.APIOnDevice, CreatedAt: 10},
	}

	t.Run("Round trip populates ids", func(t *testing.T) {
		require.NoError(t, repo.InsertMessages(ctx, input))

		loaded, err := repo.LoadMessages(ctx, chatID)
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		for i, m := range loaded {
			assert.NotZero(t, m.ID)
			m.ID = 0
			assert.Equal(t, input[i], m)
		}
		assert.True(t, loaded[0].IsUser())
	})

	t.Run("Update and delete", func(t *testing.T) {
		loaded, err := repo.LoadMessages(ctx, chatID)
		require.NoError(t, err)

		loaded[1].Content = "2 + 2 = 4"
		require.NoError(t, repo.UpdateMessages(ctx, []model.Message{loaded[1]}))
		require.NoError(t, repo.DeleteMessages(ctx, []int64{loaded[2].ID}))

		after, err := repo.LoadMessages(ctx, chatID)
		require.NoError(t, err)
		require.Len(t, after, 2)
		assert.Equal(t, loaded[1], after[1])
	})

	t.Run("Empty bulk operations are no-ops", func(t *testing.T) {
		assert.NoError(t, repo.InsertMessages(ctx, nil))
		assert.NoError(t, repo.UpdateMessages(ctx, nil))
		assert.NoError(t, repo.DeleteMessages(ctx, nil))
		assert.NoError(t, repo.DeleteRooms(ctx, nil))
	})
}
