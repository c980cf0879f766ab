package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/expentra/expentra/internal/auth"
	"github.com/expentra/expentra/internal/handler/dto"
	"github.com/expentra/expentra/internal/metrics"
	"github.com/expentra/expentra/internal/service"
)

// AdminHandler provides the staff-only JSON surface: full expense
// visibility, bulk actions and operational stats.
type AdminHandler struct {
	svc         *service.ExpenseService
	snapshotter metrics.Snapshotter
	logger      *slog.Logger
	validate    *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.ExpenseService, snapshotter metrics.Snapshotter, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:         svc,
		snapshotter: snapshotter,
		logger:      logger,
		validate:    dto.NewValidator(),
	}
}

// AdminExpenseListResponse wraps the staff expense listing.
type AdminExpenseListResponse struct {
	Expenses []dto.AdminExpenseResponse `json:"expenses"`
	Total    int                        `json:"total"`
}

// ListExpenses handles GET /api/v1/admin/expenses.
// Includes soft-deleted records; q searches description and owner
// email/names.
func (h *AdminHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := service.AdminListInput{
		UserID: query.Get("user"),
		Type:   query.Get("type"),
		Search: query.Get("q"),
	}
	switch query.Get("is_active") {
	case "true":
		active := true
		input.IsActive = &active
	case "false":
		active := false
		input.IsActive = &active
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	expenses, err := h.svc.AdminListExpenses(ctx, input)
	if err != nil {
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AdminExpenseListResponse{
		Expenses: dto.ToAdminExpenseListResponse(expenses),
		Total:    len(expenses),
	})
}

// GetExpense handles GET /api/v1/admin/expenses/{id}.
// Bypasses the active-only restriction.
func (h *AdminHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	exp, err := h.svc.AdminGetExpense(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrExpenseNotFound) {
			writeNotFound(w)
			return
		}
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAdminExpenseResponse(exp))
}

// UpdateExpense handles PATCH /api/v1/admin/expenses/{id}.
func (h *AdminHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeParseError(w)
		return
	}

	input := service.UpdateExpenseInput{
		ID:            id,
		Description:   req.Description,
		Amount:        req.Amount,
		Type:          req.Type,
		PaymentDate:   req.PaymentDate,
		Actor:         auth.ActorFromContext(r.Context()),
		IncludeHidden: true,
	}

	exp, err := h.svc.UpdateExpense(r.Context(), input)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, dto.FieldErrorEnvelope{
				Message: msgExpenseUpdateFailed,
				Errors:  verr.Fields,
			})
		case errors.Is(err, service.ErrExpenseNotFound):
			writeNotFound(w)
		default:
			h.internalError(w, err)
		}
		return
	}

	h.logger.Info("admin_expense_updated", "expense_id", exp.ID)

	writeJSON(w, http.StatusOK, dto.ToAdminExpenseResponse(exp))
}

// DeleteExpense handles DELETE /api/v1/admin/expenses/{id}.
// Soft delete, same as the standard surface.
func (h *AdminHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	actor := auth.ActorFromContext(r.Context())
	if err := h.svc.DeleteExpense(r.Context(), id, actor); err != nil {
		if errors.Is(err, service.ErrExpenseNotFound) {
			writeNotFound(w)
			return
		}
		h.internalError(w, err)
		return
	}

	h.logger.Info("admin_expense_deleted", "expense_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// DeactivateExpenses handles POST /api/v1/admin/expenses/deactivate.
func (h *AdminHandler) DeactivateExpenses(w http.ResponseWriter, r *http.Request) {
	ids, ok := h.decodeBulkIDs(w, r)
	if !ok {
		return
	}

	actor := auth.ActorFromContext(r.Context())
	updated, err := h.svc.DeactivateExpenses(r.Context(), ids, actor)
	if err != nil {
		h.internalError(w, err)
		return
	}

	h.logger.Info("admin_expenses_deactivated",
		"requested", len(ids),
		"updated", updated,
	)

	writeJSON(w, http.StatusOK, dto.BulkUpdateResponse{Updated: updated})
}

// ActivateExpenses handles POST /api/v1/admin/expenses/activate.
func (h *AdminHandler) ActivateExpenses(w http.ResponseWriter, r *http.Request) {
	ids, ok := h.decodeBulkIDs(w, r)
	if !ok {
		return
	}

	updated, err := h.svc.ActivateExpenses(r.Context(), ids)
	if err != nil {
		h.internalError(w, err)
		return
	}

	h.logger.Info("admin_expenses_activated",
		"requested", len(ids),
		"updated", updated,
	)

	writeJSON(w, http.StatusOK, dto.BulkUpdateResponse{Updated: updated})
}

// StatsResponse represents operational statistics.
type StatsResponse struct {
	Timestamp time.Time        `json:"timestamp"`
	Service   string           `json:"service"`
	Version   string           `json:"version"`
	Counters  metrics.Snapshot `json:"counters"`
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response := StatsResponse{
		Timestamp: time.Now().UTC(),
		Service:   "expentra",
		Version:   "0.1.0",
	}
	if h.snapshotter != nil {
		response.Counters = h.snapshotter.Snapshot()
	}
	writeJSON(w, http.StatusOK, response)
}

// decodeBulkIDs parses and validates the {"ids":[...]} body.
func (h *AdminHandler) decodeBulkIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req dto.BulkIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeParseError(w)
		return nil, false
	}

	if fields := dto.RequiredFieldErrors(h.validate, req); fields != nil {
		writeJSON(w, http.StatusBadRequest, dto.FieldErrorEnvelope{
			Message: "Invalid request",
			Errors:  fields,
		})
		return nil, false
	}

	return req.IDs, true
}

func (h *AdminHandler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("internal_error", "error", err)
	writeJSON(w, http.StatusInternalServerError, dto.DetailResponse{
		Detail: "A server error occurred.",
	})
}
