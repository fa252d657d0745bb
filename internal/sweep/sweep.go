// Package sweep builds and submits the buffer sweep: one expense emptying
// the previous month's unused buffer allocation and three income entries
// redistributing it into the wealth and play envelopes.
package sweep

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"jarfin/internal/core"
)

// Redistribution shares. They sum to exactly 1.0 of the leftover; sub-cent
// drift from decimal multiplication is accepted as-is.
var (
	shareInvestments = decimal.NewFromFloat(0.5)
	shareSavings     = decimal.NewFromFloat(0.3)
	shareFun         = decimal.NewFromFloat(0.2)
)

// ErrNothingToSweep reports a zero or negative leftover.
var ErrNothingToSweep = errors.New("nothing to sweep")

// BulkAdder is the single repository operation the workflow needs.
type BulkAdder interface {
	BulkAdd(ctx context.Context, drafts []core.Draft) ([]core.Transaction, error)
}

// Plan builds the four sweep drafts, all dated today. The month name is the
// source month's full name; descriptions carry its 3-letter abbreviation.
func Plan(leftover decimal.Decimal, monthName string, today core.Date) []core.Draft {
	abbrev := monthName
	if len(abbrev) > 3 {
		abbrev = abbrev[:3]
	}
	prefix := "Buffer Sweep from " + abbrev

	return []core.Draft{
		{
			Date:        today,
			Amount:      leftover,
			Category:    core.CategoryBuffer,
			Type:        core.Expense,
			Description: prefix + " (Out)",
		},
		{
			Date:        today,
			Amount:      leftover.Mul(shareInvestments),
			Category:    core.CategoryInvestments,
			Type:        core.Income,
			Description: prefix + " (to INV)",
		},
		{
			Date:        today,
			Amount:      leftover.Mul(shareSavings),
			Category:    core.CategorySavings,
			Type:        core.Income,
			Description: prefix + " (to LTSS)",
		},
		{
			Date:        today,
			Amount:      leftover.Mul(shareFun),
			Category:    core.CategoryFun,
			Type:        core.Income,
			Description: prefix + " (to FUN)",
		},
	}
}

// Sweeper submits sweep plans through a repository.
type Sweeper struct {
	repo BulkAdder
}

func New(repo BulkAdder) *Sweeper {
	return &Sweeper{repo: repo}
}

// Sweep submits the four drafts as one bulk insert. The workflow performs
// no duplicate check; callers guard with the engine's AlreadySwept flag
// before invoking it.
func (s *Sweeper) Sweep(ctx context.Context, leftover decimal.Decimal, monthName string) ([]core.Transaction, error) {
	if !leftover.IsPositive() {
		return nil, ErrNothingToSweep
	}

	drafts := Plan(leftover, monthName, core.Today())
	confirmed, err := s.repo.BulkAdd(ctx, drafts)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Buffer sweep persisted",
		"month", monthName,
		"leftover", leftover.String(),
		"entries", len(confirmed))
	return confirmed, nil
}
