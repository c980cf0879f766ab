package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"

	"github.com/expentra/expentra/internal/auth"
	"github.com/expentra/expentra/internal/handler/dto"
	"github.com/expentra/expentra/internal/model"
	"github.com/expentra/expentra/internal/repository"
)

// TokenHandler handles access token management endpoints (staff
// surface).
type TokenHandler struct {
	logger     *slog.Logger
	repository *repository.Repository
	validate   *validator.Validate
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(logger *slog.Logger, repo *repository.Repository) *TokenHandler {
	return &TokenHandler{
		logger:     logger,
		repository: repo,
		validate:   dto.NewValidator(),
	}
}

// Create handles POST /api/v1/admin/tokens.
// The plaintext token appears in this response only.
func (h *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeParseError(w)
		return
	}

	if fields := dto.RequiredFieldErrors(h.validate, req); fields != nil {
		writeJSON(w, http.StatusBadRequest, dto.FieldErrorEnvelope{
			Message: "Token could not be created",
			Errors:  fields,
		})
		return
	}

	generated, err := auth.GenerateToken(req.Env)
	if err != nil {
		h.logger.Error("failed to generate access token", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, dto.DetailResponse{Detail: "A server error occurred."})
		return
	}

	token := &model.AccessToken{
		ID:          ulid.Make().String(),
		UserID:      *req.UserID,
		TokenHash:   generated.Hash,
		TokenPrefix: generated.Prefix,
		Name:        req.Name,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.repository.CreateToken(r.Context(), token); err != nil {
		if errors.Is(err, repository.ErrUserReference) {
			writeJSON(w, http.StatusBadRequest, dto.FieldErrorEnvelope{
				Message: "Token could not be created",
				Errors:  map[string][]string{"user_id": {`Invalid pk "` + *req.UserID + `" - object does not exist.`}},
			})
			return
		}
		h.logger.Error("failed to create access token", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, dto.DetailResponse{Detail: "A server error occurred."})
		return
	}

	h.logger.Info("access token created",
		slog.String("token_id", token.ID),
		slog.String("token_prefix", token.TokenPrefix),
		slog.String("user_id", token.UserID),
	)

	writeJSON(w, http.StatusCreated, model.TokenCreateResponse{
		ID:          token.ID,
		Token:       generated.Plaintext,
		UserID:      token.UserID,
		TokenPrefix: token.TokenPrefix,
		Name:        token.Name,
		CreatedAt:   token.CreatedAt,
	})
}

// List handles GET /api/v1/admin/tokens?user_id={id}.
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, dto.FieldErrorEnvelope{
			Message: "Invalid request",
			Errors:  map[string][]string{"user_id": {"This field is required."}},
		})
		return
	}

	tokens, err := h.repository.ListTokensByUserID(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list access tokens", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, dto.DetailResponse{Detail: "A server error occurred."})
		return
	}

	responses := make([]model.TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		responses = append(responses, token.ToResponse())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tokens": responses,
		"total":  len(responses),
	})
}

// Revoke handles DELETE /api/v1/admin/tokens/{id}.
func (h *TokenHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repository.RevokeToken(r.Context(), id, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			writeNotFound(w)
			return
		}
		h.logger.Error("failed to revoke access token", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, dto.DetailResponse{Detail: "A server error occurred."})
		return
	}

	h.logger.Info("access token revoked", slog.String("token_id", id))

	w.WriteHeader(http.StatusNoContent)
}
