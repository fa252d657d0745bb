package http

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"jarfin/internal/budget"
	"jarfin/internal/core"
	"jarfin/internal/sweep"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	selected, err := dateParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.Fetch(r.Context(), month); err != nil {
		respondFailure(w, err)
		return
	}

	txs := s.svc.FilteredView(selected, month)
	if txs == nil {
		txs = []core.Transaction{}
	}
	respondJSON(w, http.StatusOK, txs)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var draft core.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	confirmed, err := s.svc.Add(r.Context(), draft)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, confirmed)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.svc.Remove(r.Context(), id); err != nil {
		respondFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	Month         string          `json:"month"`
	Totals        budget.Totals   `json:"totals"`
	Balance       decimal.Decimal `json:"balance"`
	DynamicBudget decimal.Decimal `json:"dynamicBudget"`
	Consumption   decimal.Decimal `json:"consumptionExpenses"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.Fetch(r.Context(), month); err != nil {
		respondFailure(w, err)
		return
	}

	txs := s.svc.Snapshot()
	totals := budget.MonthTotals(txs, month)
	respondJSON(w, http.StatusOK, summaryResponse{
		Month:         month.String(),
		Totals:        totals,
		Balance:       totals.Balance(),
		DynamicBudget: budget.DynamicBudget(totals, s.jars),
		Consumption:   budget.ConsumptionExpenses(txs, month, s.mapping),
	})
}

func (s *Server) handleJars(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.Fetch(r.Context(), month); err != nil {
		respondFailure(w, err)
		return
	}

	txs := s.svc.Snapshot()
	income := budget.MonthTotals(txs, month).Income
	allocations := budget.JarAllocations(txs, month, income, s.jars, s.mapping, s.categories)
	respondJSON(w, http.StatusOK, allocations)
}

func (s *Server) handleBufferStatus(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := s.bufferStatus(r, month)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := s.bufferStatus(r, month)
	if err != nil {
		respondFailure(w, err)
		return
	}
	if status.AlreadySwept {
		respondError(w, http.StatusConflict, "buffer for "+status.MonthName+" already swept")
		return
	}
	if !status.Leftover.IsPositive() {
		respondError(w, http.StatusConflict, "no buffer leftover to sweep")
		return
	}

	confirmed, err := s.sweeper.Sweep(r.Context(), status.Leftover, status.MonthName)
	if err != nil {
		if err == sweep.ErrNothingToSweep {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, confirmed)
}

// bufferStatus fetches the previous and current month in one window so the
// already-swept check can see the sweep rows dated in the current month.
func (s *Server) bufferStatus(r *http.Request, month core.Month) (budget.BufferStatus, error) {
	if err := s.svc.FetchWindow(r.Context(), month.Prev(), month); err != nil {
		return budget.BufferStatus{}, err
	}
	return budget.PrevMonthBufferStatus(s.svc.Snapshot(), month, s.jars, s.mapping), nil
}

type calendarResponse struct {
	Month      string `json:"month"`
	ActiveDays []int  `json:"activeDays"`
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.Fetch(r.Context(), month); err != nil {
		respondFailure(w, err)
		return
	}

	daySet := budget.ActiveDays(s.svc.Snapshot(), month)
	days := make([]int, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Ints(days)
	respondJSON(w, http.StatusOK, calendarResponse{Month: month.String(), ActiveDays: days})
}
