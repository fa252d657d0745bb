package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

type (
	TxType string

	// Transaction is a persisted income or expense row. Amount is always
	// non-negative; the direction of money is carried by Type, never by sign.
	Transaction struct {
		ID          int64           `json:"id"`
		Date        Date            `json:"date"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Type        TxType          `json:"type"`
		Description string          `json:"description"`
		// Optimistic marks a record shown locally before the store has
		// confirmed it. Never persisted.
		Optimistic bool `json:"isOptimistic,omitempty"`
	}

	// Draft is a transaction before the store has assigned its ID.
	Draft struct {
		Date        Date            `json:"date"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Type        TxType          `json:"type"`
		Description string          `json:"description"`
	}
)

var (
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidType      = errors.New("type must be income or expense")
	ErrEmptyDescription = errors.New("empty description")
)

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

func (d Draft) Validate() error {
	if err := d.Date.Validate(); err != nil {
		return err
	}
	if d.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyDescription
	}
	if len(d.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Confirmed builds the persisted record for a draft once the store has
// assigned an id.
func (d Draft) Confirmed(id int64) Transaction {
	return Transaction{
		ID:          id,
		Date:        d.Date,
		Amount:      d.Amount,
		Category:    d.Category,
		Type:        d.Type,
		Description: d.Description,
	}
}

// AsDraft strips the identity from a transaction.
func (t Transaction) AsDraft() Draft {
	return Draft{
		Date:        t.Date,
		Amount:      t.Amount,
		Category:    t.Category,
		Type:        t.Type,
		Description: t.Description,
	}
}
