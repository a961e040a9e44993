package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/alphalabs/mobile-api/internal/middleware"
	"github.com/alphalabs/mobile-api/internal/model"
	"github.com/alphalabs/mobile-api/internal/service"
)

// UserHandler handles HTTP requests for user profiles.
type UserHandler struct {
	service  *service.AuthService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.AuthService) *UserHandler {
	return &UserHandler{service: svc, validate: validator.New()}
}

// HandleList handles GET /api/users/ requests. Only the caller is listed.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	resp, err := h.service.GetUser(r.Context(), user.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, []model.UserResponse{resp})
}

// HandleUpdateMe handles PUT /api/users/me requests.
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Could not validate credentials"))
		return
	}

	var req model.UpdateProfileRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	resp, err := h.service.UpdateProfile(r.Context(), user, req)
	if err != nil {
		if errors.Is(err, service.ErrNameRequired) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
