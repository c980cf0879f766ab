package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseType is the closed set of expense categories.
type ExpenseType string

const (
	TypeGroceries   ExpenseType = "comestibles"
	TypeLeisure     ExpenseType = "ocio"
	TypeElectronics ExpenseType = "electronica"
	TypeUtilities   ExpenseType = "servicio públicos"
	TypeClothing    ExpenseType = "ropa"
	TypeHealth      ExpenseType = "salud"
	TypeOther       ExpenseType = "otros"
)

// ExpenseTypes lists every valid expense type.
var ExpenseTypes = []ExpenseType{
	TypeGroceries,
	TypeLeisure,
	TypeElectronics,
	TypeUtilities,
	TypeClothing,
	TypeHealth,
	TypeOther,
}

// IsValid checks if the expense type is a member of the closed set.
func (t ExpenseType) IsValid() bool {
	for _, valid := range ExpenseTypes {
		if t == valid {
			return true
		}
	}
	return false
}

// Expense represents a single expense record owned by a user.
// Records are soft-deleted: destroy flips IsActive and stamps the
// audit trail, the row is never removed through the API.
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        ExpenseType     `json:"type"`
	UserID      string          `json:"user"`
	PaymentDate time.Time       `json:"payment_date"`
	IsActive    bool            `json:"is_active"`
	Audit
}
