package core

import "github.com/shopspring/decimal"

type (
	// Category is static reference data; ID is the join key from
	// Transaction.Category and into CategoryMapping.
	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	// Jar is a budget envelope receiving a fixed share of monthly income.
	Jar struct {
		ID         string  `json:"id"`
		Name       string  `json:"name"`
		Percentage float64 `json:"percentage"`
		Color      string  `json:"color"`
	}

	// CategoryMapping assigns every category to exactly one jar. Categories
	// missing from the mapping contribute to no jar; that silent drop is the
	// documented rule, not an error.
	CategoryMapping map[string]string

	// CategoryAmount is a per-category subtotal inside a jar breakdown.
	CategoryAmount struct {
		ID     string          `json:"id"`
		Name   string          `json:"name"`
		Amount decimal.Decimal `json:"amount"`
	}

	// JarAllocation is a jar extended with its derived monthly progress.
	// Never persisted.
	JarAllocation struct {
		Jar
		Target     decimal.Decimal  `json:"target"`
		Current    decimal.Decimal  `json:"current"`
		Percent    float64          `json:"percent"`
		Over       bool             `json:"isOver"`
		Categories []CategoryAmount `json:"categories"`
	}
)

// JarFor resolves the jar a category belongs to. The second return is false
// for unmapped categories.
func (m CategoryMapping) JarFor(categoryID string) (string, bool) {
	jarID, ok := m[categoryID]
	return jarID, ok
}
