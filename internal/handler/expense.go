package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/expentra/expentra/internal/auth"
	"github.com/expentra/expentra/internal/handler/dto"
	"github.com/expentra/expentra/internal/service"
)

// Mutation envelope messages.
const (
	msgExpenseCreated      = "Expense created successfully"
	msgExpenseCreateFailed = "Expense could not be created"
	msgExpenseUpdated      = "Expense updated successfully"
	msgExpenseUpdateFailed = "Expense could not be updated"
)

// ExpenseHandler handles HTTP requests for expense operations.
type ExpenseHandler struct {
	svc      *service.ExpenseService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(svc *service.ExpenseService, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		svc:      svc,
		logger:   logger,
		validate: dto.NewValidator(),
	}
}

// Create handles POST /api/v1/expenses.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeParseError(w)
		return
	}

	if fields := dto.RequiredFieldErrors(h.validate, req); fields != nil {
		writeJSON(w, http.StatusBadRequest, dto.FieldErrorEnvelope{
			Message: msgExpenseCreateFailed,
			Errors:  fields,
		})
		return
	}

	input := service.CreateExpenseInput{
		Description: *req.Description,
		Amount:      *req.Amount,
		Type:        *req.Type,
		UserID:      *req.User,
		PaymentDate: req.PaymentDate,
		Actor:       auth.ActorFromContext(r.Context()),
	}

	exp, err := h.svc.CreateExpense(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err, msgExpenseCreateFailed)
		return
	}

	h.logger.Info("expense_created",
		"expense_id", exp.ID,
		"type", string(exp.Type),
		"user_id", exp.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.MessageEnvelope{
		Message: msgExpenseCreated,
		Data:    dto.ToExpenseResponse(exp),
	})
}

// Get handles GET /api/v1/expenses/{id}.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	exp, err := h.svc.GetExpense(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrExpenseNotFound) {
			writeNotFound(w)
			return
		}
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToExpenseResponse(exp))
}

// List handles GET /api/v1/expenses.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := service.ListExpensesInput{
		UserID:    query.Get("user"),
		Type:      query.Get("type"),
		DateRange: query.Get("date_range"),
	}
	input.StartDate = parseDateParam(query.Get("start_date"))
	input.EndDate = parseDateParam(query.Get("end_date"))

	expenses, err := h.svc.ListExpenses(r.Context(), input)
	if err != nil {
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToExpenseListResponse(expenses))
}

// Update handles PUT and PATCH /api/v1/expenses/{id}.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeParseError(w)
		return
	}

	// req.User is accepted but ignored: ownership is read-only.
	input := service.UpdateExpenseInput{
		ID:          id,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		PaymentDate: req.PaymentDate,
		Actor:       auth.ActorFromContext(r.Context()),
	}

	exp, err := h.svc.UpdateExpense(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err, msgExpenseUpdateFailed)
		return
	}

	h.logger.Info("expense_updated",
		"expense_id", exp.ID,
		"type", string(exp.Type),
	)

	writeJSON(w, http.StatusOK, dto.MessageEnvelope{
		Message: msgExpenseUpdated,
		Data:    dto.ToExpenseDetailResponse(exp),
	})
}

// Delete handles DELETE /api/v1/expenses/{id}.
// The record is soft-deleted, never removed.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	h.logger.Info("expense_deleted", "expense_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors for mutation endpoints.
func (h *ExpenseHandler) handleServiceError(w http.ResponseWriter, err error, failMessage string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, dto.FieldErrorEnvelope{
			Message: failMessage,
			Errors:  verr.Fields,
		})
	case errors.Is(err, service.ErrExpenseNotFound):
		writeNotFound(w)
	default:
		h.internalError(w, err)
	}
}

func (h *ExpenseHandler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("internal_error", "error", err)
	writeJSON(w, http.StatusInternalServerError, dto.DetailResponse{
		Detail: "A server error occurred.",
	})
}

// parseDateParam parses a YYYY-MM-DD query value as midnight UTC.
// Unparseable values impose no bound.
func parseDateParam(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}
