// Package store defines the transaction persistence boundary. The core
// never talks to a backend directly; it sees only the TransactionStore
// interface and the StoreError wrapper.
package store

import (
	"context"
	"errors"
	"fmt"

	"jarfin/internal/core"
)

// TransactionStore persists and retrieves transaction rows. Range bounds
// are inclusive and results come back sorted by date descending.
type TransactionStore interface {
	FetchAll(ctx context.Context) ([]core.Transaction, error)
	FetchRange(ctx context.Context, from, to core.Date) ([]core.Transaction, error)

	// Insert persists a draft; the store assigns the id.
	Insert(ctx context.Context, d core.Draft) (core.Transaction, error)

	// BulkInsert persists all drafts in one call with all-or-nothing
	// semantics.
	BulkInsert(ctx context.Context, drafts []core.Draft) ([]core.Transaction, error)

	DeleteByID(ctx context.Context, id int64) error
}

// ErrNotFound reports a delete of an id the store does not hold.
var ErrNotFound = errors.New("transaction not found")

// StoreError wraps any backend failure. Callers never branch on subtypes;
// every store failure takes the same rollback path.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Wrap builds a StoreError unless err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
