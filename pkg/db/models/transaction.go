package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TransactionType is either income or expense.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is a single finance entry owned by a user.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID       int64           `bun:"id,pk,autoincrement"`
	UserID   int64           `bun:"user_id,notnull"`
	Content  string          `bun:"content,notnull"`
	Currency string          `bun:"currency,notnull"`
	Amount   float64         `bun:"amount,notnull"`
	Type     TransactionType `bun:"type,notnull"`
	// Date is a calendar day in YYYY-MM-DD form.
	Date     string `bun:"date,notnull"`
	Category string `bun:"category,notnull"`
	Tags     string `bun:"tags,notnull"`
	Notes    string `bun:"notes,nullzero"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
