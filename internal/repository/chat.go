package repository

import (
	"context"
	"fmt"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/jackc/pgx/v5"
)

const (
	chatSessionColumns = `id, user_id, is_active, created_at, updated_at`
	chatMessageColumns = `id, session_id, sender_id, content, is_read, created_at, updated_at`
)

type ChatRepository struct {
	server *server.Server
}

func NewChatRepository(s *server.Server) *ChatRepository {
	return &ChatRepository{server: s}
}

func (r *ChatRepository) getSession(ctx context.Context, stmt string, args pgx.NamedArgs) (*model.ChatSession, error) {
	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute chat session query: %w", err)
	}

	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.ChatSession])
	if err != nil {
		return nil, notFound("chat_sessions", err)
	}
	return &session, nil
}

func (r *ChatRepository) GetSession(ctx context.Context, id int64) (*model.ChatSession, error) {
	return r.getSession(ctx, `SELECT `+chatSessionColumns+` FROM chat_sessions WHERE id = @id`, pgx.NamedArgs{"id": id})
}

// GetActiveSessionByUser returns the user's most recent active session.
func (r *ChatRepository) GetActiveSessionByUser(ctx context.Context, userID int64) (*model.ChatSession, error) {
	stmt := `
		SELECT ` + chatSessionColumns + ` FROM chat_sessions
		WHERE user_id = @user_id AND is_active
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	return r.getSession(ctx, stmt, pgx.NamedArgs{"user_id": userID})
}

func (r *ChatRepository) CreateSession(ctx context.Context, userID int64) (*model.ChatSession, error) {
	stmt := `INSERT INTO chat_sessions (user_id) VALUES (@user_id) RETURNING ` + chatSessionColumns
	return r.getSession(ctx, stmt, pgx.NamedArgs{"user_id": userID})
}

func (r *ChatRepository) ListActiveSessions(ctx context.Context) ([]model.ChatSession, error) {
	stmt := `SELECT ` + chatSessionColumns + ` FROM chat_sessions WHERE is_active ORDER BY updated_at DESC, id DESC`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to list active chat sessions: %w", err)
	}

	sessions, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.ChatSession])
	if err != nil {
		return nil, fmt.Errorf("failed to collect chat sessions: %w", err)
	}
	return sessions, nil
}

func (r *ChatRepository) CloseSession(ctx context.Context, id int64) (*model.ChatSession, error) {
	stmt := `UPDATE chat_sessions SET is_active = FALSE WHERE id = @id RETURNING ` + chatSessionColumns
	return r.getSession(ctx, stmt, pgx.NamedArgs{"id": id})
}

// TouchSession bumps updated_at so recently used sessions sort first.
func (r *ChatRepository) TouchSession(ctx context.Context, id int64) error {
	_, err := r.server.DB.Conn(ctx).Exec(ctx, `UPDATE chat_sessions SET updated_at = now() WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to touch chat session %d: %w", id, err)
	}
	return nil
}

func (r *ChatRepository) CreateMessage(ctx context.Context, sessionID, senderID int64, content string) (*model.ChatMessage, error) {
	stmt := `
		INSERT INTO chat_messages (session_id, sender_id, content)
		VALUES (@session_id, @sender_id, @content)
		RETURNING ` + chatMessageColumns

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{
		"session_id": sessionID,
		"sender_id":  senderID,
		"content":    content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat message: %w", err)
	}

	message, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.ChatMessage])
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListMessages pages through a session's messages, oldest first.
func (r *ChatRepository) ListMessages(ctx context.Context, sessionID int64, offset, limit int) ([]model.ChatMessage, error) {
	stmt := `
		SELECT ` + chatMessageColumns + ` FROM chat_messages
		WHERE session_id = @session_id
		ORDER BY created_at, id
		OFFSET @offset LIMIT @limit`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{
		"session_id": sessionID,
		"offset":     offset,
		"limit":      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}

	messages, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.ChatMessage])
	if err != nil {
		return nil, fmt.Errorf("failed to collect chat messages: %w", err)
	}
	return messages, nil
}

// LastMessages returns up to n of the newest messages of every session in
// ids, keyed by session and ordered oldest first.
func (r *ChatRepository) LastMessages(ctx context.Context, ids []int64, n int) (map[int64][]model.ChatMessage, error) {
	result := make(map[int64][]model.ChatMessage, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	stmt := `
		SELECT ` + chatMessageColumns + ` FROM (
			SELECT m.*, row_number() OVER (PARTITION BY m.session_id ORDER BY m.created_at DESC, m.id DESC) AS rn
			FROM chat_messages m
			WHERE m.session_id = ANY(@ids)
		) ranked
		WHERE rn <= @n
		ORDER BY session_id, created_at, id`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{"ids": ids, "n": n})
	if err != nil {
		return nil, fmt.Errorf("failed to load latest chat messages: %w", err)
	}

	messages, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.ChatMessage])
	if err != nil {
		return nil, fmt.Errorf("failed to collect chat messages: %w", err)
	}

	for _, m := range messages {
		result[m.SessionID] = append(result[m.SessionID], m)
	}
	return result, nil
}

// CountUnread counts unread messages in the session not sent by readerID.
func (r *ChatRepository) CountUnread(ctx context.Context, sessionID, readerID int64) (int, error) {
	stmt := `
		SELECT count(*) FROM chat_messages
		WHERE session_id = @session_id AND sender_id <> @reader_id AND NOT is_read`

	var count int
	err := r.server.DB.Conn(ctx).QueryRow(ctx, stmt, pgx.NamedArgs{
		"session_id": sessionID,
		"reader_id":  readerID,
	}).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// MarkRead marks every message in the session not sent by readerID as read.
func (r *ChatRepository) MarkRead(ctx context.Context, sessionID, readerID int64) (int64, error) {
	stmt := `
		UPDATE chat_messages SET is_read = TRUE
		WHERE session_id = @session_id AND sender_id <> @reader_id AND NOT is_read`

	tag, err := r.server.DB.Conn(ctx).Exec(ctx, stmt, pgx.NamedArgs{
		"session_id": sessionID,
		"reader_id":  readerID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}
