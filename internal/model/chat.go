package model

import "time"

// Chat represents a user's conversation thread.
type Chat struct {
	ID          int64
	UserID      int64
	ClientID    int64
	Title       string
	LastMessage *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChatMessage is one prompt/response exchange inside a chat.
type ChatMessage struct {
	ID        int64
	ChatID    int64
	UserID    int64
	ClientID  int64
	Prompt    string
	Response  string
	IsVoice   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateChatRequest represents a chat creation request. Title is optional.
type CreateChatRequest struct {
	Title *string `json:"title" validate:"omitempty,max=255"`
}

// ChatResponse represents a chat in API responses.
type ChatResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	UserID      int64      `json:"user_id"`
	ClientID    int64      `json:"client_id"`
	LastMessage *time.Time `json:"last_message,omitempty"`
	CreatedOn   time.Time  `json:"created_on"`
}

// SendMessageRequest represents a message sent to a chat.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
	IsVoice bool   `json:"is_voice"`
}

// MessageResponse represents a chat message in API responses.
type MessageResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Response  string    `json:"response"`
	IsVoice   bool      `json:"is_voice"`
	CreatedOn time.Time `json:"created_on"`
}
