package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/alphalabs/mobile-api/internal/middleware"
	"github.com/alphalabs/mobile-api/internal/model"
	"github.com/alphalabs/mobile-api/internal/service"
)

// ChatHandler handles HTTP requests for chats and their messages.
type ChatHandler struct {
	service  *service.ChatService
	validate *validator.Validate
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{service: svc, validate: validator.New()}
}

// HandleCreate handles POST /api/chat/ requests.
func (h *ChatHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	var req model.CreateChatRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	resp, err := h.service.CreateChat(r.Context(), user.ID, req)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleList handles GET /api/chat/ requests.
func (h *ChatHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	resp, err := h.service.ListChats(r.Context(), user.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleSendMessage handles POST /api/chat/{chatID}/messages requests.
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	chatID, err := pathID(r, "chatID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid chat id"))
		return
	}

	var req model.SendMessageRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	resp, err := h.service.SendMessage(r.Context(), user.ID, chatID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleListMessages handles GET /api/chat/{chatID}/messages requests.
func (h *ChatHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	chatID, err := pathID(r, "chatID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid chat id"))
		return
	}

	resp, err := h.service.ListMessages(r.Context(), user.ID, chatID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrChatNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse("Chat not found"))
	case errors.Is(err, service.ErrContentRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	default:
		internalError(w, r, err)
	}
}
