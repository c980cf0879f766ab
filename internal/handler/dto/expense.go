// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/expentra/expentra/internal/model"
)

// MessageEnvelope wraps successful mutations.
type MessageEnvelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// FieldErrorEnvelope wraps validation failures with per-field messages.
type FieldErrorEnvelope struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// DetailResponse is the single-line error body used for auth and
// not-found failures.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// CreateExpenseRequest represents the request body for creating an
// expense. Pointer fields distinguish "absent" from zero values.
type CreateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Description *string          `json:"description" validate:"required"`
	Type        *string          `json:"type" validate:"required"`
	User        *string          `json:"user" validate:"required"`
	PaymentDate *time.Time       `json:"payment_date"`
}

// UpdateExpenseRequest represents the request body for updating an
// expense. The user field is accepted but read-only; payment_date
// presence is enforced downstream even for partial updates.
type UpdateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Type        *string          `json:"type"`
	User        *string          `json:"user"`
	PaymentDate *time.Time       `json:"payment_date"`
}

// BulkIDsRequest selects records for a batch admin action.
type BulkIDsRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// BulkUpdateResponse reports how many records a batch action touched.
type BulkUpdateResponse struct {
	Updated int64 `json:"updated"`
}

// ExpenseResponse is the read projection for the standard surface.
// It intentionally has no id field.
type ExpenseResponse struct {
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	User        string    `json:"user"`
	PaymentDate time.Time `json:"payment_date"`
}

// ExpenseDetailResponse is the mutation payload: the projection plus
// the record id.
type ExpenseDetailResponse struct {
	ID          string    `json:"id"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	User        string    `json:"user"`
	PaymentDate time.Time `json:"payment_date"`
}

// AdminExpenseResponse is the full staff-surface representation,
// including visibility and the audit trail.
type AdminExpenseResponse struct {
	ID          string     `json:"id"`
	Amount      string     `json:"amount"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	User        string     `json:"user"`
	PaymentDate time.Time  `json:"payment_date"`
	IsActive    bool       `json:"is_active"`
	CreatedBy   string     `json:"created_by,omitempty"`
	CreatedDate time.Time  `json:"created_date"`
	UpdatedBy   string     `json:"updated_by,omitempty"`
	UpdatedDate *time.Time `json:"updated_date,omitempty"`
	DeletedBy   string     `json:"deleted_by,omitempty"`
	DeletedDate *time.Time `json:"deleted_date,omitempty"`
}

// ToExpenseResponse converts an Expense model to its read projection.
func ToExpenseResponse(exp *model.Expense) ExpenseResponse {
	return ExpenseResponse{
		Amount:      exp.Amount.StringFixed(2),
		Description: exp.Description,
		Type:        string(exp.Type),
		User:        exp.UserID,
		PaymentDate: exp.PaymentDate,
	}
}

// ToExpenseListResponse converts a slice of Expense models.
func ToExpenseListResponse(expenses []*model.Expense) []ExpenseResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i, exp := range expenses {
		responses[i] = ToExpenseResponse(exp)
	}
	return responses
}

// ToExpenseDetailResponse converts an Expense model to the mutation
// payload.
func ToExpenseDetailResponse(exp *model.Expense) ExpenseDetailResponse {
	return ExpenseDetailResponse{
		ID:          exp.ID,
		Amount:      exp.Amount.StringFixed(2),
		Description: exp.Description,
		Type:        string(exp.Type),
		User:        exp.UserID,
		PaymentDate: exp.PaymentDate,
	}
}

// ToAdminExpenseResponse converts an Expense model to the full staff
// representation.
func ToAdminExpenseResponse(exp *model.Expense) AdminExpenseResponse {
	return AdminExpenseResponse{
		ID:          exp.ID,
		Amount:      exp.Amount.StringFixed(2),
		Description: exp.Description,
		Type:        string(exp.Type),
		User:        exp.UserID,
		PaymentDate: exp.PaymentDate,
		IsActive:    exp.IsActive,
		CreatedBy:   exp.CreatedBy,
		CreatedDate: exp.CreatedDate,
		UpdatedBy:   exp.UpdatedBy,
		UpdatedDate: exp.UpdatedDate,
		DeletedBy:   exp.DeletedBy,
		DeletedDate: exp.DeletedDate,
	}
}

// ToAdminExpenseListResponse converts a slice of Expense models.
func ToAdminExpenseListResponse(expenses []*model.Expense) []AdminExpenseResponse {
	responses := make([]AdminExpenseResponse, len(expenses))
	for i, exp := range expenses {
		responses[i] = ToAdminExpenseResponse(exp)
	}
	return responses
}

// RequiredFieldErrors runs struct validation and translates missing
// required fields into the canonical per-field message map. Returns
// nil when the request shape is valid.
func RequiredFieldErrors(v *validator.Validate, req any) map[string][]string {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string][]string{"non_field_errors": {"Invalid request."}}
	}

	fields := make(map[string][]string, len(verrs))
	for _, fieldErr := range verrs {
		fields[fieldErr.Field()] = append(fields[fieldErr.Field()], "This field is required.")
	}
	return fields
}
