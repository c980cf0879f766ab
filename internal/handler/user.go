package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/expentra/expentra/internal/auth"
	"github.com/expentra/expentra/internal/handler/dto"
	"github.com/expentra/expentra/internal/service"
)

// UserHandler handles HTTP requests for account operations.
type UserHandler struct {
	svc      *service.UserService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:      svc,
		logger:   logger,
		validate: dto.NewValidator(),
	}
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeParseError(w)
		return
	}

	if fields := dto.RequiredFieldErrors(h.validate, req); fields != nil {
		writeJSON(w, http.StatusBadRequest, dto.FieldErrorEnvelope{
			Message: "User could not be created",
			Errors:  fields,
		})
		return
	}

	input := service.CreateUserInput{
		Email:       *req.Email,
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    *req.Password,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
		Actor:       auth.ActorFromContext(r.Context()),
	}

	user, err := h.svc.CreateUser(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			writeJSON(w, http.StatusBadRequest, dto.FieldErrorEnvelope{
				Message: "User could not be created",
				Errors:  map[string][]string{"email": {"user with this email already exists."}},
			})
			return
		}
		h.internalError(w, err)
		return
	}

	h.logger.Info("user_created",
		"user_id", user.ID,
		"is_staff", user.IsStaff,
	)

	writeJSON(w, http.StatusCreated, dto.MessageEnvelope{
		Message: "User created successfully",
		Data:    dto.ToUserResponse(user),
	})
}

// Get handles GET /api/v1/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeNotFound(w)
			return
		}
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": dto.ToUserListResponse(users),
		"total": len(users),
	})
}

// Delete handles DELETE /api/v1/users/{id}.
// Hard delete; the user's expenses cascade with it.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeNotFound(w)
			return
		}
		h.internalError(w, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", id)

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("internal_error", "error", err)
	writeJSON(w, http.StatusInternalServerError, dto.DetailResponse{
		Detail: "A server error occurred.",
	})
}
