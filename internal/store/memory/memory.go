// Package memory holds an in-process TransactionStore used as the dev
// backend and by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"jarfin/internal/core"
	"jarfin/internal/store"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
}

func New() *Store {
	return &Store{nextID: 1}
}

// Seed loads initial rows, assigning ids as a real store would.
func (s *Store) Seed(drafts []core.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range drafts {
		s.items = append(s.items, d.Confirmed(s.nextID))
		s.nextID++
	}
}

func (s *Store) FetchAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.items), nil
}

func (s *Store) FetchRange(_ context.Context, from, to core.Date) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.items {
		if t.Date.Before(from.Time) || t.Date.After(to.Time) {
			continue
		}
		out = append(out, t)
	}
	return sortDesc(out), nil
}

func (s *Store) Insert(_ context.Context, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, store.Wrap("insert", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := d.Confirmed(s.nextID)
	s.nextID++
	s.items = append(s.items, tx)
	return tx, nil
}

func (s *Store) BulkInsert(_ context.Context, drafts []core.Draft) ([]core.Transaction, error) {
	for _, d := range drafts {
		if err := d.Validate(); err != nil {
			return nil, store.Wrap("bulk insert", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(drafts))
	for _, d := range drafts {
		tx := d.Confirmed(s.nextID)
		s.nextID++
		s.items = append(s.items, tx)
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return store.Wrap("delete", store.ErrNotFound)
}

func sortedCopy(items []core.Transaction) []core.Transaction {
	out := append([]core.Transaction(nil), items...)
	return sortDesc(out)
}

func sortDesc(items []core.Transaction) []core.Transaction {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date.Time)
		}
		return items[i].ID > items[j].ID
	})
	return items
}

var _ store.TransactionStore = (*Store)(nil)
