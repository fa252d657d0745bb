// Package budget is the derived-financial-metrics engine: pure functions
// turning a transaction list plus a month selector into totals, jar
// allocation progress, consumption spend and the cross-month buffer status.
//
// Nothing in this package performs I/O or mutates its inputs, and no
// function here ever fails: unmapped categories contribute zero, they are
// not errors.
package budget

import (
	"strings"

	"github.com/shopspring/decimal"

	"jarfin/internal/core"
)

// sweepMarker is the description fragment shared by all transactions a
// buffer sweep creates.
const sweepMarker = "Buffer Sweep"

// Totals is the income/expense partition of a single month.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Balance returns income minus expenses.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expenses)
}

// BufferStatus describes the previous month's buffer jar leftover.
type BufferStatus struct {
	Leftover     decimal.Decimal `json:"leftover"`
	AlreadySwept bool            `json:"isAlreadySwept"`
	MonthName    string          `json:"monthName"`
}

// SpendingJarIDs lists the jars classified as immediate consumption, as
// opposed to the wealth-building jars (investments, long-term savings,
// education) which are excluded from the spending ceiling.
func SpendingJarIDs() []string {
	return []string{core.JarNecessities, core.JarPlay, core.JarGive, core.JarBuffer}
}

func isSpendingJar(jarID string) bool {
	for _, id := range SpendingJarIDs() {
		if id == jarID {
			return true
		}
	}
	return false
}

// MonthTotals sums the month's transactions partitioned by type.
func MonthTotals(txs []core.Transaction, month core.Month) Totals {
	totals := Totals{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, t := range txs {
		if !month.Contains(t.Date) {
			continue
		}
		if t.Type == core.Income {
			totals.Income = totals.Income.Add(t.Amount)
		} else {
			totals.Expenses = totals.Expenses.Add(t.Amount)
		}
	}
	return totals
}

// SpendingShare returns the summed percentage of the spending jars. With
// the default configuration this is 0.54. Summed in decimal so the share
// stays exact.
func SpendingShare(jars []core.Jar) decimal.Decimal {
	share := decimal.Zero
	for _, jar := range jars {
		if isSpendingJar(jar.ID) {
			share = share.Add(decimal.NewFromFloat(jar.Percentage))
		}
	}
	return share
}

// DynamicBudget is the monthly spending ceiling: the portion of income
// allocated to the spending jars.
func DynamicBudget(totals Totals, jars []core.Jar) decimal.Decimal {
	return totals.Income.Mul(SpendingShare(jars))
}

// ConsumptionExpenses sums the month's expenses whose category maps to a
// spending jar. Unmapped categories and wealth-building jars are excluded.
func ConsumptionExpenses(txs []core.Transaction, month core.Month, mapping core.CategoryMapping) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t.Type != core.Expense || !month.Contains(t.Date) {
			continue
		}
		jarID, ok := mapping.JarFor(t.Category)
		if !ok || !isSpendingJar(jarID) {
			continue
		}
		sum = sum.Add(t.Amount)
	}
	return sum
}

// JarAllocations computes per-jar allocation progress for the month.
// Output order matches the jar configuration order. Expenses whose category
// has no mapping entry land in no jar.
func JarAllocations(
	txs []core.Transaction,
	month core.Month,
	income decimal.Decimal,
	jars []core.Jar,
	mapping core.CategoryMapping,
	categories []core.Category,
) []core.JarAllocation {
	type accum struct {
		total decimal.Decimal
		byCat map[string]decimal.Decimal
		order []string // first-occurrence order of categories
	}

	acc := make(map[string]*accum, len(jars))
	for _, jar := range jars {
		acc[jar.ID] = &accum{total: decimal.Zero, byCat: map[string]decimal.Decimal{}}
	}

	for _, t := range txs {
		if t.Type != core.Expense || !month.Contains(t.Date) {
			continue
		}
		jarID, ok := mapping.JarFor(t.Category)
		if !ok {
			continue
		}
		a, ok := acc[jarID]
		if !ok {
			// Mapped to a jar outside the configuration; treated the same
			// as unmapped.
			continue
		}
		a.total = a.total.Add(t.Amount)
		if _, seen := a.byCat[t.Category]; !seen {
			a.order = append(a.order, t.Category)
		}
		a.byCat[t.Category] = a.byCat[t.Category].Add(t.Amount)
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	out := make([]core.JarAllocation, 0, len(jars))
	for _, jar := range jars {
		a := acc[jar.ID]
		target := income.Mul(decimal.NewFromFloat(jar.Percentage))

		var percent float64
		if target.IsPositive() {
			percent, _ = a.total.Div(target).Mul(decimal.NewFromInt(100)).Float64()
			if percent > 100 {
				percent = 100
			}
		}

		breakdown := make([]core.CategoryAmount, 0, len(a.order))
		for _, catID := range a.order {
			name, ok := names[catID]
			if !ok {
				name = catID
			}
			breakdown = append(breakdown, core.CategoryAmount{
				ID:     catID,
				Name:   name,
				Amount: a.byCat[catID],
			})
		}

		out = append(out, core.JarAllocation{
			Jar:        jar,
			Target:     target,
			Current:    a.total,
			Percent:    percent,
			Over:       a.total.GreaterThan(target),
			Categories: breakdown,
		})
	}
	return out
}

// PrevMonthBufferStatus computes the previous month's unspent buffer
// allocation and whether a sweep for that month already exists.
//
// Sweep-generated income is excluded from the income baseline so the next
// sweep's target is not inflated by the previous one. The already-swept
// check scans the whole transaction set for the previous month's 3-letter
// name; two same-named months of different years would collide, matching
// the behavior this reimplements.
func PrevMonthBufferStatus(
	txs []core.Transaction,
	current core.Month,
	jars []core.Jar,
	mapping core.CategoryMapping,
) BufferStatus {
	prev := current.Prev()

	income := decimal.Zero
	spent := decimal.Zero
	for _, t := range txs {
		if !prev.Contains(t.Date) {
			continue
		}
		switch {
		case t.Type == core.Income && !strings.Contains(t.Description, sweepMarker):
			income = income.Add(t.Amount)
		case t.Type == core.Expense:
			if jarID, ok := mapping.JarFor(t.Category); ok && jarID == core.JarBuffer {
				spent = spent.Add(t.Amount)
			}
		}
	}

	target := income.Mul(decimal.NewFromFloat(bufferPercentage(jars)))
	leftover := target.Sub(spent)
	if leftover.IsNegative() {
		leftover = decimal.Zero
	}

	marker := sweepMarker + " from " + prev.Abbrev()
	swept := false
	for _, t := range txs {
		if strings.Contains(t.Description, marker) {
			swept = true
			break
		}
	}

	return BufferStatus{Leftover: leftover, AlreadySwept: swept, MonthName: prev.Name()}
}

// bufferPercentage reads the buffer jar's configured share. Zero when the
// configuration carries no buffer jar.
func bufferPercentage(jars []core.Jar) float64 {
	for _, jar := range jars {
		if jar.ID == core.JarBuffer {
			return jar.Percentage
		}
	}
	return 0
}

// ActiveDays returns the set of days-of-month having at least one
// transaction, for calendar rendering.
func ActiveDays(txs []core.Transaction, month core.Month) map[int]bool {
	days := make(map[int]bool)
	for _, t := range txs {
		if month.Contains(t.Date) {
			days[t.Date.Day()] = true
		}
	}
	return days
}
