// Package worker runs the periodic buffer-sweep check: when the previous
// month's buffer jar holds an unspent leftover and no sweep for it exists
// yet, the worker redistributes it automatically.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"jarfin/internal/budget"
	"jarfin/internal/core"
	"jarfin/internal/services"
	"jarfin/internal/sweep"
)

type SweepWorker struct {
	svc     *services.TransactionService
	sweeper *sweep.Sweeper
	jars    []core.Jar
	mapping core.CategoryMapping
}

func NewSweepWorker(svc *services.TransactionService, sweeper *sweep.Sweeper) *SweepWorker {
	return &SweepWorker{
		svc:     svc,
		sweeper: sweeper,
		jars:    core.DefaultJars(),
		mapping: core.DefaultMapping(),
	}
}

// RunOnce checks the current month's predecessor and sweeps when there is
// an unswept leftover. Returns true when a sweep was performed.
func (w *SweepWorker) RunOnce(ctx context.Context) (bool, error) {
	month := core.CurrentMonth()

	// The window covers the previous and current month so the
	// already-swept marker rows, dated today, are visible.
	if err := w.svc.FetchWindow(ctx, month.Prev(), month); err != nil {
		return false, fmt.Errorf("fetch sweep window: %w", err)
	}

	status := budget.PrevMonthBufferStatus(w.svc.Snapshot(), month, w.jars, w.mapping)
	if status.AlreadySwept {
		slog.InfoContext(ctx, "Buffer already swept", "month", status.MonthName)
		return false, nil
	}
	if !status.Leftover.IsPositive() {
		slog.InfoContext(ctx, "No buffer leftover", "month", status.MonthName)
		return false, nil
	}

	if _, err := w.sweeper.Sweep(ctx, status.Leftover, status.MonthName); err != nil {
		return false, fmt.Errorf("sweep buffer: %w", err)
	}

	slog.InfoContext(ctx, "Automatic buffer sweep complete",
		"month", status.MonthName,
		"leftover", status.Leftover.String())
	return true, nil
}
