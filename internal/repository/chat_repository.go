package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"multichat/backend/internal/model"
)

type sqliteChatRepository struct {
	db *sql.DB
}

func NewSQLiteChatRepository(db *sql.DB) ChatRepository {
	return &sqliteChatRepository{db: db}
}

const roomColumns = "chat_id, title, enabled_platform, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (model.ChatRoom, error) {
	var room model.ChatRoom
	var platforms string
	if err := row.Scan(&room.ID, &room.Title, &platforms, &room.CreatedAt, &room.UpdatedAt); err != nil {
		return room, err
	}
	types, err := model.ParseAPITypes(platforms)
	if err != nil {
		return room, fmt.Errorf("chat %d: %w", room.ID, err)
	}
	room.EnabledPlatforms = types
	return room, nil
}

func (r *sqliteChatRepository) ListRooms(ctx context.Context) ([]model.ChatRoom, error) {
	query := "SELECT " + roomColumns + " FROM chats ORDER BY updated_at DESC, chat_id DESC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	rooms := []model.ChatRoom{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *sqliteChatRepository) GetRoom(ctx context.Context, chatID int64) (*model.ChatRoom, error) {
	query := "SELECT " + roomColumns + " FROM chats WHERE chat_id = ?"
	room, err := scanRoom(r.db.QueryRowContext(ctx, query, chatID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *sqliteChatRepository) InsertRoom(ctx context.Context, room model.ChatRoom) (int64, error) {
	query := "INSERT INTO chats (title, enabled_platform, created_at, updated_at) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, query, room.Title, model.JoinAPITypes(room.EnabledPlatforms), room.CreatedAt, room.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("could not insert chat: %w", err)
	}
	return res.LastInsertId()
}

func (r *sqliteChatRepository) UpdateRoom(ctx context.Context, room model.ChatRoom) error {
	query := "UPDATE chats SET title = ?, enabled_platform = ?, updated_at = ? WHERE chat_id = ?"
	res, err := r.db.ExecContext(ctx, query, room.Title, model.JoinAPITypes(room.EnabledPlatforms), room.UpdatedAt, room.ID)
	if err != nil {
		return fmt.Errorf("could not update chat: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteChatRepository) DeleteRooms(ctx context.Context, chatIDs []int64) error {
	if len(chatIDs) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		msgStmt, err := tx.PrepareContext(ctx, "DELETE FROM messages WHERE chat_id = ?")
		if err != nil {
			return err
		}
		defer func() { _ = msgStmt.Close() }()
		chatStmt, err := tx.PrepareContext(ctx, "DELETE FROM chats WHERE chat_id = ?")
		if err != nil {
			return err
		}
		defer func() { _ = chatStmt.Close() }()

		for _, id := range chatIDs {
			if _, err := msgStmt.ExecContext(ctx, id); err != nil {
				return fmt.Errorf("could not delete messages of chat %d: %w", id, err)
			}
			if _, err := chatStmt.ExecContext(ctx, id); err != nil {
				return fmt.Errorf("could not delete chat %d: %w", id, err)
			}
		}
		return nil
	})
}

func (r *sqliteChatRepository) LoadMessages(ctx context.Context, chatID int64) ([]model.Message, error) {
	query := `
		SELECT message_id, chat_id, content, platform_type, created_at
		FROM messages
		WHERE chat_id = ?
		ORDER BY created_at ASC, message_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	messages := []model.Message{}
	for rows.Next() {
		var msg model.Message
		var platform sql.NullString
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Content, &platform, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if platform.Valid {
			msg.Platform = model.APIType(platform.String)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *sqliteChatRepository) InsertMessages(ctx context.Context, messages []model.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO messages (message_id, chat_id, content, platform_type, created_at) VALUES (?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, m := range messages {
			if _, err := stmt.ExecContext(ctx, nullID(m.ID), m.ChatID, m.Content, nullPlatform(m.Platform), m.CreatedAt); err != nil {
				return fmt.Errorf("could not insert message: %w", err)
			}
		}
		return nil
	})
}

func (r *sqliteChatRepository) UpdateMessages(ctx context.Context, messages []model.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "UPDATE messages SET chat_id = ?, content = ?, platform_type = ?, created_at = ? WHERE message_id = ?")
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, m := range messages {
			if _, err := stmt.ExecContext(ctx, m.ChatID, m.Content, nullPlatform(m.Platform), m.CreatedAt, m.ID); err != nil {
				return fmt.Errorf("could not update message %d: %w", m.ID, err)
			}
		}
		return nil
	})
}

func (r *sqliteChatRepository) DeleteMessages(ctx context.Context, messageIDs []int64) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "DELETE FROM messages WHERE message_id = ?")
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, id := range messageIDs {
			if _, err := stmt.ExecContext(ctx, id); err != nil {
				return fmt.Errorf("could not delete message %d: %w", id, err)
			}
		}
		return nil
	})
}

func (r *sqliteChatRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// nullID lets SQLite assign the id of unsaved messages.
func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullPlatform(api model.APIType) sql.NullString {
	return sql.NullString{String: string(api), Valid: api != ""}
}
