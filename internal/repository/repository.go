// Package repository holds the in-memory working set of transactions and
// coordinates it against the store with optimistic mutate/rollback
// semantics: provisional changes apply immediately and a precomputed
// inverse restores the set when the store call fails.
package repository

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"jarfin/internal/core"
	"jarfin/internal/store"
)

type Repository struct {
	store store.TransactionStore

	mu         sync.Mutex
	txs        []core.Transaction
	nextTempID int64
	loading    bool
}

// New seeds the temporary-id counter from the epoch millisecond clock:
// provisional ids must sort above every store-assigned serial id so that
// a just-created record wins same-day ties in the views.
func New(st store.TransactionStore) *Repository {
	return &Repository{store: st, nextTempID: time.Now().UnixMilli()}
}

// Fetch replaces the working set with the store's rows for the month.
// The loading flag is raised for the duration of the call.
func (r *Repository) Fetch(ctx context.Context, month core.Month) error {
	return r.FetchWindow(ctx, month, month)
}

// FetchWindow replaces the working set with the store's rows between the
// first day of from and the last day of to. The buffer views fetch the
// previous and current month in one window.
func (r *Repository) FetchWindow(ctx context.Context, from, to core.Month) error {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()

	rows, err := r.store.FetchRange(ctx, from.First(), to.Last())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		return err
	}
	r.txs = rows
	return nil
}

// Loading reports whether a Fetch is in flight.
func (r *Repository) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Add prepends an optimistic record under a temporary id, then asks the
// store to persist the draft. On success the temporary record is replaced
// by the confirmed one; on failure it is removed and the error propagates.
// Matching is by the temporary id, so interleaved mutations cannot
// displace the wrong record.
func (r *Repository) Add(ctx context.Context, d core.Draft) (core.Transaction, error) {
	r.mu.Lock()
	tempID := r.nextTempID
	r.nextTempID++
	optimistic := d.Confirmed(tempID)
	optimistic.Optimistic = true
	r.txs = append([]core.Transaction{optimistic}, r.txs...)
	r.mu.Unlock()

	confirmed, err := r.store.Insert(ctx, d)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.removeByID(tempID)
		slog.WarnContext(ctx, "Optimistic add rolled back", "temp_id", tempID, "error", err)
		return core.Transaction{}, err
	}
	for i := range r.txs {
		if r.txs[i].ID == tempID {
			r.txs[i] = confirmed
			break
		}
	}
	return confirmed, nil
}

// Remove drops the record immediately and asks the store to delete it. On
// failure the snapshot is re-inserted and the set re-sorted by date
// descending. Removing an id not in the working set is a no-op.
func (r *Repository) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	var snapshot *core.Transaction
	for i := range r.txs {
		if r.txs[i].ID == id {
			tx := r.txs[i]
			snapshot = &tx
			break
		}
	}
	if snapshot == nil {
		r.mu.Unlock()
		return nil
	}
	r.removeByID(id)
	r.mu.Unlock()

	if err := r.store.DeleteByID(ctx, id); err != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.txs = append([]core.Transaction{*snapshot}, r.txs...)
		sortDesc(r.txs)
		slog.WarnContext(ctx, "Optimistic delete rolled back", "id", id, "error", err)
		return err
	}
	return nil
}

// BulkAdd persists all drafts in one store call. There is no optimistic
// path: the working set changes only after the store confirms, so a
// failure leaves it untouched.
func (r *Repository) BulkAdd(ctx context.Context, drafts []core.Draft) ([]core.Transaction, error) {
	confirmed, err := r.store.BulkInsert(ctx, drafts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(append([]core.Transaction(nil), confirmed...), r.txs...)
	return confirmed, nil
}

// FilteredView returns the records for an exact date when selected is set,
// otherwise the records of the month, sorted by date descending with newer
// ids first on same-day ties.
func (r *Repository) FilteredView(selected *core.Date, month core.Month) []core.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []core.Transaction
	for _, t := range r.txs {
		if selected != nil {
			if t.Date.Equal(*selected) {
				out = append(out, t)
			}
			continue
		}
		if month.Contains(t.Date) {
			out = append(out, t)
		}
	}
	sortDesc(out)
	return out
}

// Snapshot returns a copy of the current working set.
func (r *Repository) Snapshot() []core.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Transaction(nil), r.txs...)
}

// removeByID deletes in place; callers hold the lock.
func (r *Repository) removeByID(id int64) {
	for i := range r.txs {
		if r.txs[i].ID == id {
			r.txs = append(r.txs[:i], r.txs[i+1:]...)
			return
		}
	}
}

func sortDesc(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date.Time)
		}
		return txs[i].ID > txs[j].ID
	})
}
