package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"jarfin/internal/core"
	"jarfin/internal/repository"
	"jarfin/internal/services"
	"jarfin/internal/store/memory"
	"jarfin/internal/sweep"
)

func newTestServer(seed []core.Draft) (*Server, *memory.Store) {
	mem := memory.New()
	mem.Seed(seed)
	repo := repository.New(mem)
	svc := services.NewTransactionService(repo, nil)
	return NewServer(":0", svc, sweep.New(svc)), mem
}

func draft(date string, amount float64, category string, typ core.TxType, desc string) core.Draft {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Draft{
		Date:        d,
		Amount:      decimal.NewFromFloat(amount),
		Category:    category,
		Type:        typ,
		Description: desc,
	}
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(nil)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSummary(t *testing.T) {
	s, _ := newTestServer([]core.Draft{
		draft("2026-01-01", 3500, "income", core.Income, "Salary"),
		draft("2026-01-02", 1200, "housing", core.Expense, "Rent"),
	})

	rec := do(t, s, http.MethodGet, "/api/summary?month=2026-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var got struct {
		Totals struct {
			Income   decimal.Decimal `json:"income"`
			Expenses decimal.Decimal `json:"expenses"`
		} `json:"totals"`
		Balance       decimal.Decimal `json:"balance"`
		DynamicBudget decimal.Decimal `json:"dynamicBudget"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Totals.Income.Equal(decimal.NewFromInt(3500)) {
		t.Errorf("income = %s", got.Totals.Income)
	}
	if !got.Totals.Expenses.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("expenses = %s", got.Totals.Expenses)
	}
	if !got.Balance.Equal(decimal.NewFromInt(2300)) {
		t.Errorf("balance = %s", got.Balance)
	}
	if !got.DynamicBudget.Equal(decimal.NewFromInt(1890)) {
		t.Errorf("dynamic budget = %s, want 1890", got.DynamicBudget)
	}
}

func TestSummaryRejectsBadMonth(t *testing.T) {
	s, _ := newTestServer(nil)
	rec := do(t, s, http.MethodGet, "/api/summary?month=january", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAddAndDeleteTransaction(t *testing.T) {
	s, _ := newTestServer(nil)

	rec := do(t, s, http.MethodPost, "/api/transactions",
		`{"date":"2026-01-10","amount":"55.50","category":"fun","type":"expense","description":"Cinema"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body = %s", rec.Code, rec.Body)
	}

	var created core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID <= 0 {
		t.Errorf("id = %d, want store-assigned", created.ID)
	}
	if created.Optimistic {
		t.Error("response must carry the confirmed record")
	}

	rec = do(t, s, http.MethodGet, "/api/transactions?month=2026-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed []core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d, want 1", len(listed))
	}

	rec = do(t, s, http.MethodDelete, "/api/transactions/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestAddRejectsInvalidDraft(t *testing.T) {
	s, _ := newTestServer(nil)
	rec := do(t, s, http.MethodPost, "/api/transactions",
		`{"date":"2026-01-10","amount":"-5","category":"fun","type":"expense","description":"bad"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCalendar(t *testing.T) {
	s, _ := newTestServer([]core.Draft{
		draft("2026-01-01", 10, "food", core.Expense, "a"),
		draft("2026-01-15", 20, "food", core.Expense, "b"),
	})

	rec := do(t, s, http.MethodGet, "/api/calendar?month=2026-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got calendarResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.ActiveDays) != 2 || got.ActiveDays[0] != 1 || got.ActiveDays[1] != 15 {
		t.Errorf("active days = %v, want [1 15]", got.ActiveDays)
	}
}

// The sweep endpoints work relative to the real current month, so the test
// seeds the previous month dynamically.
func TestSweepFlow(t *testing.T) {
	prev := core.CurrentMonth().Prev()
	incomeDate := prev.First().String()
	spendDate := core.NewDate(prev.Year, prev.Month, 10).String()

	s, _ := newTestServer([]core.Draft{
		draft(incomeDate, 1000, "income", core.Income, "Salary"),
		draft(spendDate, 20, "buffer", core.Expense, "Repair"),
	})

	rec := do(t, s, http.MethodGet, "/api/buffer", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("buffer status = %d, body = %s", rec.Code, rec.Body)
	}
	var status struct {
		Leftover     decimal.Decimal `json:"leftover"`
		AlreadySwept bool            `json:"isAlreadySwept"`
		MonthName    string          `json:"monthName"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Leftover.Equal(decimal.NewFromInt(40)) {
		t.Errorf("leftover = %s, want 40", status.Leftover)
	}
	if status.AlreadySwept {
		t.Error("nothing swept yet")
	}
	if status.MonthName != prev.Name() {
		t.Errorf("month name = %s, want %s", status.MonthName, prev.Name())
	}

	rec = do(t, s, http.MethodPost, "/api/sweep", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("sweep status = %d, body = %s", rec.Code, rec.Body)
	}
	var confirmed []core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &confirmed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(confirmed) != 4 {
		t.Fatalf("sweep created %d rows, want 4", len(confirmed))
	}

	// The second sweep must be refused: the marker rows now exist.
	rec = do(t, s, http.MethodPost, "/api/sweep", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second sweep status = %d, want 409", rec.Code)
	}
}

func TestSweepWithNothingLeftOver(t *testing.T) {
	s, _ := newTestServer(nil)
	rec := do(t, s, http.MethodPost, "/api/sweep", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 with zero leftover", rec.Code)
	}
}
