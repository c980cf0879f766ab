// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/expentra/expentra/internal/metrics"
	"github.com/expentra/expentra/internal/model"
	"github.com/expentra/expentra/internal/repository"
)

// Service errors.
var (
	ErrExpenseNotFound = errors.New("expense not found")
)

// Validation messages surfaced in field error maps.
const (
	MsgAmountNegative = "El monto no puede ser negativo."
	MsgTypeInvalid    = "Tipo de gasto no válido."
	MsgFieldRequired  = "This field is required."
)

// MsgInvalidUserPK formats the message for an expense referencing a
// user that does not exist.
func MsgInvalidUserPK(id string) string {
	return fmt.Sprintf("Invalid pk %q - object does not exist.", id)
}

// ValidationError carries per-field validation messages for a 400
// response.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Fields))
}

// fieldErrors accumulates validation messages keyed by field name.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ExpenseStore is the persistence surface the expense service needs.
// *repository.Repository satisfies it.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, exp *model.Expense) error
	GetExpenseByID(ctx context.Context, id string) (*model.Expense, error)
	GetExpenseByIDAny(ctx context.Context, id string) (*model.Expense, error)
	ListExpenses(ctx context.Context, filter repository.ExpenseFilter) ([]*model.Expense, error)
	UpdateExpense(ctx context.Context, exp *model.Expense) error
	SoftDeleteExpense(ctx context.Context, id, deletedBy string, deletedAt time.Time) error
	DeactivateExpenses(ctx context.Context, ids []string, deletedBy string, deletedAt time.Time) (int64, error)
	ActivateExpenses(ctx context.Context, ids []string) (int64, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

// ExpenseService handles expense business logic.
type ExpenseService struct {
	store   ExpenseStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store ExpenseStore, recorder metrics.Recorder) *ExpenseService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ExpenseService{
		store:   store,
		metrics: recorder,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateExpenseInput defines input for creating an expense.
type CreateExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	Type        string
	UserID      string
	PaymentDate *time.Time
	Actor       string
}

// CreateExpense validates input and inserts a new active expense with
// its creation stamp.
func (s *ExpenseService) CreateExpense(ctx context.Context, input CreateExpenseInput) (*model.Expense, error) {
	fields := fieldErrors{}

	if input.Amount.IsNegative() {
		fields.add("amount", MsgAmountNegative)
	}
	if !model.ExpenseType(input.Type).IsValid() {
		fields.add("type", MsgTypeInvalid)
	}
	if input.UserID == "" {
		fields.add("user", MsgFieldRequired)
	} else {
		exists, err := s.store.UserExists(ctx, input.UserID)
		if err != nil {
			return nil, err
		}
		if !exists {
			fields.add("user", MsgInvalidUserPK(input.UserID))
		}
	}
	if err := fields.err(); err != nil {
		return nil, err
	}

	now := s.now()
	paymentDate := now
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	exp := &model.Expense{
		ID:          ulid.Make().String(),
		Description: input.Description,
		Amount:      input.Amount,
		Type:        model.ExpenseType(input.Type),
		UserID:      input.UserID,
		PaymentDate: paymentDate,
		IsActive:    true,
	}
	exp.Audit = exp.Audit.StampCreate(input.Actor, now)

	if err := s.store.CreateExpense(ctx, exp); err != nil {
		switch {
		case errors.Is(err, repository.ErrAmountNegative):
			return nil, (fieldErrors{"amount": {MsgAmountNegative}}).err()
		case errors.Is(err, repository.ErrUserReference):
			return nil, (fieldErrors{"user": {MsgInvalidUserPK(input.UserID)}}).err()
		}
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.metrics.IncExpenseCreated()

	return exp, nil
}

// GetExpense retrieves an active expense by id.
func (s *ExpenseService) GetExpense(ctx context.Context, id string) (*model.Expense, error) {
	exp, err := s.store.GetExpenseByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	return exp, nil
}

// ListExpensesInput defines the list filters for the standard surface.
type ListExpensesInput struct {
	UserID    string
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
	DateRange string
}

// ListExpenses retrieves active expenses matching the filters.
// The date_range preset layers an extra lower bound over any explicit
// start_date/end_date values.
func (s *ExpenseService) ListExpenses(ctx context.Context, input ListExpensesInput) ([]*model.Expense, error) {
	filter := repository.ExpenseFilter{
		UserID:     input.UserID,
		Type:       model.ExpenseType(input.Type),
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		RangeStart: repository.ResolveDateRange(input.DateRange, s.now()),
	}

	expenses, err := s.store.ListExpenses(ctx, filter)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []*model.Expense{}
	}
	return expenses, nil
}

// UpdateExpenseInput defines input for updating an expense. Nil
// pointers leave the current value untouched, except payment_date
// which every update must supply. The owning user is read-only.
type UpdateExpenseInput struct {
	ID            string
	Description   *string
	Amount        *decimal.Decimal
	Type          *string
	PaymentDate   *time.Time
	Actor         string
	IncludeHidden bool
}

// UpdateExpense applies the supplied fields and records the update
// stamp. IncludeHidden lets the admin surface edit soft-deleted
// records.
func (s *ExpenseService) UpdateExpense(ctx context.Context, input UpdateExpenseInput) (*model.Expense, error) {
	lookup := s.store.GetExpenseByID
	if input.IncludeHidden {
		lookup = s.store.GetExpenseByIDAny
	}

	exp, err := lookup(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	fields := fieldErrors{}

	if input.Amount != nil {
		if input.Amount.IsNegative() {
			fields.add("amount", MsgAmountNegative)
		} else {
			exp.Amount = *input.Amount
		}
	}
	if input.Type != nil {
		if !model.ExpenseType(*input.Type).IsValid() {
			fields.add("type", MsgTypeInvalid)
		} else {
			exp.Type = model.ExpenseType(*input.Type)
		}
	}
	if input.PaymentDate == nil {
		fields.add("payment_date", MsgFieldRequired)
	} else {
		exp.PaymentDate = *input.PaymentDate
	}
	if err := fields.err(); err != nil {
		return nil, err
	}

	if input.Description != nil {
		exp.Description = *input.Description
	}

	exp.Audit = exp.Audit.StampUpdate(input.Actor, s.now())

	if err := s.store.UpdateExpense(ctx, exp); err != nil {
		if errors.Is(err, repository.ErrAmountNegative) {
			return nil, (fieldErrors{"amount": {MsgAmountNegative}}).err()
		}
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	s.metrics.IncExpenseUpdated()

	return exp, nil
}

// DeleteExpense soft-deletes an expense: the record stays in storage
// with is_active off and the deletion stamp filled in.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id, actor string) error {
	err := s.store.SoftDeleteExpense(ctx, id, actor, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}

	s.metrics.IncExpenseDeactivated()

	return nil
}

// AdminListInput defines the list filters for the staff surface.
type AdminListInput struct {
	UserID   string
	Type     string
	IsActive *bool
	Search   string
}

// AdminListExpenses retrieves expenses for the staff surface,
// including soft-deleted records unless is_active narrows them out.
func (s *ExpenseService) AdminListExpenses(ctx context.Context, input AdminListInput) ([]*model.Expense, error) {
	filter := repository.ExpenseFilter{
		UserID:        input.UserID,
		Type:          model.ExpenseType(input.Type),
		IncludeHidden: true,
		IsActive:      input.IsActive,
		Search:        input.Search,
	}

	expenses, err := s.store.ListExpenses(ctx, filter)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []*model.Expense{}
	}
	return expenses, nil
}

// AdminGetExpense retrieves any expense by id, soft-deleted or not.
func (s *ExpenseService) AdminGetExpense(ctx context.Context, id string) (*model.Expense, error) {
	exp, err := s.store.GetExpenseByIDAny(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	return exp, nil
}

// DeactivateExpenses soft-deletes the given records in one batch and
// returns how many rows changed.
func (s *ExpenseService) DeactivateExpenses(ctx context.Context, ids []string, actor string) (int64, error) {
	updated, err := s.store.DeactivateExpenses(ctx, ids, actor, s.now())
	if err != nil {
		return 0, err
	}

	if updated > 0 {
		s.metrics.IncExpenseDeactivated()
	}

	return updated, nil
}

// ActivateExpenses re-activates the given records in one batch and
// returns how many rows changed. Deletion stamps are preserved.
func (s *ExpenseService) ActivateExpenses(ctx context.Context, ids []string) (int64, error) {
	updated, err := s.store.ActivateExpenses(ctx, ids)
	if err != nil {
		return 0, err
	}

	if updated > 0 {
		s.metrics.IncExpenseActivated()
	}

	return updated, nil
}
