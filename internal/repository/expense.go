package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/expentra/expentra/internal/model"
)

// Common errors for expense repository operations.
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrAmountNegative  = errors.New("amount violates non-negative constraint")
	ErrUserReference   = errors.New("referenced user does not exist")
)

const expenseColumns = `e.id, e.description, e.amount, e.type, e.user_id, e.payment_date, e.is_active,
		e.created_by, e.created_date, e.updated_by, e.updated_date, e.deleted_by, e.deleted_date`

// ExpenseFilter defines the optional predicates for listing expenses.
// Each field contributes one AND clause only when set.
type ExpenseFilter struct {
	UserID        string
	Type          model.ExpenseType
	StartDate     *time.Time // payment_date >=
	EndDate       *time.Time // payment_date <=
	RangeStart    *time.Time // payment_date >= (resolved date_range preset)
	IncludeHidden bool       // admin paths see inactive records too
	IsActive      *bool      // explicit is_active filter (admin)
	Search        string     // description / owner email / owner names (admin)
}

// clauses translates the filter into SQL predicates and their
// arguments, starting at placeholder $startIdx. Only supplied
// parameters contribute a clause; everything is ANDed together.
func (f ExpenseFilter) clauses(startIdx int) ([]string, []any) {
	var where []string
	var args []any
	idx := startIdx

	add := func(clause string, arg any) {
		where = append(where, fmt.Sprintf(clause, idx))
		args = append(args, arg)
		idx++
	}

	if !f.IncludeHidden {
		where = append(where, "e.is_active = TRUE")
	} else if f.IsActive != nil {
		add("e.is_active = $%d", *f.IsActive)
	}
	if f.UserID != "" {
		add("e.user_id = $%d", f.UserID)
	}
	if f.Type != "" {
		add("e.type = $%d", string(f.Type))
	}
	if f.StartDate != nil {
		add("e.payment_date >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("e.payment_date <= $%d", *f.EndDate)
	}
	if f.RangeStart != nil {
		add("e.payment_date >= $%d", *f.RangeStart)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		where = append(where, fmt.Sprintf(
			"(e.description ILIKE $%d OR u.email ILIKE $%d OR u.first_name ILIKE $%d OR u.last_name ILIKE $%d)",
			idx, idx, idx, idx))
		args = append(args, pattern)
		idx++
	}

	return where, args
}

// ResolveDateRange expands a named preset into the lower bound it
// imposes on payment_date, evaluated against today. Presets add only
// a lower bound; unrecognized values impose no constraint.
func ResolveDateRange(value string, today time.Time) *time.Time {
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	var days int
	switch value {
	case "last_week":
		days = 7
	case "last_month":
		days = 30
	case "last_3_months":
		days = 90
	default:
		return nil
	}

	start := midnight.AddDate(0, 0, -days)
	return &start
}

// CreateExpense inserts a new expense row.
func (r *Repository) CreateExpense(ctx context.Context, exp *model.Expense) error {
	query := `
		INSERT INTO expenses (id, description, amount, type, user_id, payment_date, is_active,
			created_by, created_date, updated_by, updated_date, deleted_by, deleted_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		exp.ID,
		exp.Description,
		exp.Amount,
		string(exp.Type),
		exp.UserID,
		exp.PaymentDate,
		exp.IsActive,
		exp.CreatedBy,
		exp.CreatedDate,
		nullable(exp.UpdatedBy),
		exp.UpdatedDate,
		nullable(exp.DeletedBy),
		exp.DeletedDate,
	)

	if err != nil {
		switch {
		case isCheckViolation(err):
			return ErrAmountNegative
		case isForeignKeyViolation(err):
			return ErrUserReference
		}
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// GetExpenseByID retrieves an active expense by id. Soft-deleted
// records are invisible through this path.
func (r *Repository) GetExpenseByID(ctx context.Context, id string) (*model.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses e
		WHERE e.id = $1 AND e.is_active = TRUE
	`

	exp, err := scanExpense(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense by ID: %w", err)
	}

	return exp, nil
}

// GetExpenseByIDAny retrieves an expense by id regardless of its
// soft-delete flag. Used by the admin surface.
func (r *Repository) GetExpenseByIDAny(ctx context.Context, id string) (*model.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses e
		WHERE e.id = $1
	`

	exp, err := scanExpense(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense by ID: %w", err)
	}

	return exp, nil
}

// ListExpenses retrieves expenses matching the filter, ordered by
// payment_date descending (the default ordering of the resource).
func (r *Repository) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*model.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses e
	`
	if filter.Search != "" {
		query = `
		SELECT ` + expenseColumns + `
		FROM expenses e
		JOIN users u ON u.id = e.user_id
	`
	}

	where, args := filter.clauses(1)
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}

	query += " ORDER BY e.payment_date DESC, e.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*model.Expense
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// UpdateExpense updates the mutable fields of an expense along with
// its update audit stamp. The owning user is never changed here.
func (r *Repository) UpdateExpense(ctx context.Context, exp *model.Expense) error {
	query := `
		UPDATE expenses
		SET description = $2, amount = $3, type = $4, payment_date = $5,
		    updated_by = $6, updated_date = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		exp.ID,
		exp.Description,
		exp.Amount,
		string(exp.Type),
		exp.PaymentDate,
		nullable(exp.UpdatedBy),
		exp.UpdatedDate,
	)

	if err != nil {
		if isCheckViolation(err) {
			return ErrAmountNegative
		}
		return fmt.Errorf("failed to update expense: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// SoftDeleteExpense flips is_active off and records the deletion
// stamp. The row is never physically removed through this path.
func (r *Repository) SoftDeleteExpense(ctx context.Context, id, deletedBy string, deletedAt time.Time) error {
	query := `
		UPDATE expenses
		SET is_active = FALSE, deleted_by = $2, deleted_date = $3
		WHERE id = $1 AND is_active = TRUE
	`

	result, err := r.pool.Exec(ctx, query, id, deletedBy, deletedAt)
	if err != nil {
		return fmt.Errorf("failed to soft-delete expense: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// DeactivateExpenses soft-deletes the selected records as a single
// batch update and returns the affected count.
func (r *Repository) DeactivateExpenses(ctx context.Context, ids []string, deletedBy string, deletedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE expenses
		SET is_active = FALSE, deleted_by = $2, deleted_date = $3
		WHERE id = ANY($1)
	`

	result, err := r.pool.Exec(ctx, query, pq.Array(ids), deletedBy, deletedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expenses: %w", err)
	}

	return result.RowsAffected(), nil
}

// ActivateExpenses re-activates the selected records as a single
// batch update and returns the affected count. The deletion stamps
// are left untouched.
func (r *Repository) ActivateExpenses(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE expenses
		SET is_active = TRUE
		WHERE id = ANY($1)
	`

	result, err := r.pool.Exec(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to activate expenses: %w", err)
	}

	return result.RowsAffected(), nil
}

// scanExpense scans a row into an Expense model.
func scanExpense(row pgx.Row) (*model.Expense, error) {
	var exp model.Expense
	var expType string
	var updatedBy, deletedBy *string

	err := row.Scan(
		&exp.ID,
		&exp.Description,
		&exp.Amount,
		&expType,
		&exp.UserID,
		&exp.PaymentDate,
		&exp.IsActive,
		&exp.CreatedBy,
		&exp.CreatedDate,
		&updatedBy,
		&exp.UpdatedDate,
		&deletedBy,
		&exp.DeletedDate,
	)
	if err != nil {
		return nil, err
	}

	exp.Type = model.ExpenseType(expType)
	if updatedBy != nil {
		exp.UpdatedBy = *updatedBy
	}
	if deletedBy != nil {
		exp.DeletedBy = *deletedBy
	}

	return &exp, nil
}

// nullable maps an empty string to NULL for optional text columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
