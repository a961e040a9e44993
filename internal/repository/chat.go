package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alphalabs/mobile-api/internal/model"
)

var ErrChatNotFound = errors.New("chat not found")

const chatColumns = `id, user_id, client_id, title, last_message, created_at, updated_at`

// ChatRepository handles chat and chat message persistence operations.
// Every read is scoped to the owning user.
type ChatRepository struct {
	db *DB
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db *DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// WithTx runs fn inside a single transaction.
func (r *ChatRepository) WithTx(ctx context.Context, fn func(tx DBTX) error) error {
	return r.db.WithTx(ctx, fn)
}

// Create inserts a new chat and sets the generated ID and timestamps.
func (r *ChatRepository) Create(ctx context.Context, chat *model.Chat) error {
	query := `INSERT INTO user_chats (user_id, client_id, title, last_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	now := nowUTC()
	id, err := r.db.insert(ctx, r.db, query,
		chat.UserID, chat.ClientID, chat.Title, nullTime(chat.LastMessage), now, now,
	)
	if err != nil {
		return err
	}

	chat.ID = id
	chat.CreatedAt = now
	chat.UpdatedAt = now
	return nil
}

// GetForUser retrieves a chat owned by userID. A chat owned by someone else
// is reported as ErrChatNotFound.
func (r *ChatRepository) GetForUser(ctx context.Context, chatID, userID int64) (*model.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM user_chats WHERE id = ? AND user_id = ?`

	chat, err := scanChat(r.db.QueryRowContext(ctx, r.db.rebind(query), chatID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	return chat, nil
}

// ListByUser returns the user's chats, most recently active first. Chats
// without messages sort after the rest, newest first.
func (r *ChatRepository) ListByUser(ctx context.Context, userID int64) ([]model.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM user_chats WHERE user_id = ?
		ORDER BY (last_message IS NULL), last_message DESC, created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []model.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}

	return chats, rows.Err()
}

// CreateMessageTx inserts a chat message within the provided transaction.
func (r *ChatRepository) CreateMessageTx(ctx context.Context, tx DBTX, msg *model.ChatMessage) error {
	query := `INSERT INTO chat_messages (user_chat_id, user_id, client_id, prompt, response, is_voice, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	now := nowUTC()
	id, err := r.db.insert(ctx, tx, query,
		msg.ChatID, msg.UserID, msg.ClientID, msg.Prompt, msg.Response, msg.IsVoice, now, now,
	)
	if err != nil {
		return err
	}

	msg.ID = id
	msg.CreatedAt = now
	msg.UpdatedAt = now
	return nil
}

// TouchTx sets the chat's last_message time within the provided transaction.
func (r *ChatRepository) TouchTx(ctx context.Context, tx DBTX, chatID int64, at time.Time) error {
	query := `UPDATE user_chats SET last_message = ?, updated_at = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, r.db.rebind(query), at, at, chatID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrChatNotFound
	}
	return nil
}

// ListMessages returns the messages of a chat owned by userID in the order
// they were written.
func (r *ChatRepository) ListMessages(ctx context.Context, chatID, userID int64) ([]model.ChatMessage, error) {
	query := `SELECT id, user_chat_id, user_id, client_id, prompt, response, is_voice, created_at, updated_at
		FROM chat_messages WHERE user_chat_id = ? AND user_id = ?
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), chatID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(
			&m.ID, &m.ChatID, &m.UserID, &m.ClientID, &m.Prompt, &m.Response,
			&m.IsVoice, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*model.Chat, error) {
	chat := &model.Chat{}
	var title sql.NullString
	var last sql.NullTime
	if err := row.Scan(
		&chat.ID, &chat.UserID, &chat.ClientID, &title, &last, &chat.CreatedAt, &chat.UpdatedAt,
	); err != nil {
		return nil, err
	}

	chat.Title = title.String
	if last.Valid {
		t := last.Time
		chat.LastMessage = &t
	}
	return chat, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
