package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alphalabs/mobile-api/internal/model"
	"github.com/alphalabs/mobile-api/internal/repository"
)

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrContentRequired = errors.New("content is required")
)

const defaultTitleLayout = "2006-01-02 15:04"

// ChatStore is the persistence the chat flows depend on.
type ChatStore interface {
	WithTx(ctx context.Context, fn func(tx repository.DBTX) error) error
	Create(ctx context.Context, chat *model.Chat) error
	GetForUser(ctx context.Context, chatID, userID int64) (*model.Chat, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Chat, error)
	CreateMessageTx(ctx context.Context, tx repository.DBTX, msg *model.ChatMessage) error
	TouchTx(ctx context.Context, tx repository.DBTX, chatID int64, at time.Time) error
	ListMessages(ctx context.Context, chatID, userID int64) ([]model.ChatMessage, error)
}

// Responder produces the assistant reply to a prompt.
type Responder interface {
	Respond(ctx context.Context, chat *model.Chat, prompt string) (string, error)
}

// EchoResponder answers every prompt with a fixed acknowledgement.
type EchoResponder struct{}

func (EchoResponder) Respond(_ context.Context, _ *model.Chat, prompt string) (string, error) {
	return "AI Response to: " + prompt, nil
}

// ChatService handles chat business logic. Every operation is scoped to the
// calling user.
type ChatService struct {
	store     ChatStore
	responder Responder
	now       func() time.Time
}

// NewChatService creates a new ChatService.
func NewChatService(store ChatStore, responder Responder) *ChatService {
	if responder == nil {
		responder = EchoResponder{}
	}
	return &ChatService{
		store:     store,
		responder: responder,
		now:       time.Now,
	}
}

// CreateChat starts a new chat. Without a title one is derived from the
// current UTC time.
func (s *ChatService) CreateChat(ctx context.Context, userID int64, req model.CreateChatRequest) (model.ChatResponse, error) {
	var title string
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
	}
	if title == "" {
		title = "Chat " + s.now().UTC().Format(defaultTitleLayout)
	}

	chat := &model.Chat{
		UserID:   userID,
		ClientID: model.DefaultClientID,
		Title:    title,
	}
	if err := s.store.Create(ctx, chat); err != nil {
		return model.ChatResponse{}, err
	}

	return toChatResponse(chat), nil
}

// ListChats returns the user's chats, most recently active first.
func (s *ChatService) ListChats(ctx context.Context, userID int64) ([]model.ChatResponse, error) {
	chats, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]model.ChatResponse, 0, len(chats))
	for i := range chats {
		resp = append(resp, toChatResponse(&chats[i]))
	}
	return resp, nil
}

// SendMessage records a prompt and its reply in a chat the user owns. The
// message and the chat's activity time are written in one transaction.
func (s *ChatService) SendMessage(ctx context.Context, userID, chatID int64, req model.SendMessageRequest) (model.MessageResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return model.MessageResponse{}, ErrContentRequired
	}

	chat, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return model.MessageResponse{}, err
	}

	reply, err := s.responder.Respond(ctx, chat, req.Content)
	if err != nil {
		return model.MessageResponse{}, err
	}

	msg := &model.ChatMessage{
		ChatID:   chat.ID,
		UserID:   userID,
		ClientID: chat.ClientID,
		Prompt:   req.Content,
		Response: reply,
		IsVoice:  req.IsVoice,
	}

	err = s.store.WithTx(ctx, func(tx repository.DBTX) error {
		if err := s.store.CreateMessageTx(ctx, tx, msg); err != nil {
			return err
		}
		return s.store.TouchTx(ctx, tx, chat.ID, msg.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return model.MessageResponse{}, ErrChatNotFound
		}
		return model.MessageResponse{}, err
	}

	return toMessageResponse(msg), nil
}

// ListMessages returns the messages of a chat the user owns, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, userID, chatID int64) ([]model.MessageResponse, error) {
	if _, err := s.ownedChat(ctx, userID, chatID); err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]model.MessageResponse, 0, len(messages))
	for i := range messages {
		resp = append(resp, toMessageResponse(&messages[i]))
	}
	return resp, nil
}

func (s *ChatService) ownedChat(ctx context.Context, userID, chatID int64) (*model.Chat, error) {
	chat, err := s.store.GetForUser(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return chat, nil
}

func toChatResponse(c *model.Chat) model.ChatResponse {
	return model.ChatResponse{
		ID:          c.ID,
		Title:       c.Title,
		UserID:      c.UserID,
		ClientID:    c.ClientID,
		LastMessage: c.LastMessage,
		CreatedOn:   c.CreatedAt,
	}
}

func toMessageResponse(m *model.ChatMessage) model.MessageResponse {
	return model.MessageResponse{
		ID:        m.ID,
		Content:   m.Prompt,
		Response:  m.Response,
		IsVoice:   m.IsVoice,
		CreatedOn: m.CreatedAt,
	}
}
