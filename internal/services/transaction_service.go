// Package services orchestrates the repository against the optional event
// publisher. Mutations always go through the repository first; event
// publication is best-effort and never fails a confirmed mutation.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jarfin/internal/core"
	"jarfin/internal/repository"
)

// Publisher announces confirmed transaction changes to downstream
// consumers.
type Publisher interface {
	PublishCreated(ctx context.Context, id int64) error
	PublishDeleted(ctx context.Context, id int64) error
	Close() error
}

type TransactionService struct {
	repo      *repository.Repository
	publisher Publisher
}

// NewTransactionService wires the repository with an optional publisher;
// pass nil to run without eventing.
func NewTransactionService(repo *repository.Repository, publisher Publisher) *TransactionService {
	return &TransactionService{repo: repo, publisher: publisher}
}

func (s *TransactionService) Fetch(ctx context.Context, month core.Month) error {
	return s.repo.Fetch(ctx, month)
}

func (s *TransactionService) FetchWindow(ctx context.Context, from, to core.Month) error {
	return s.repo.FetchWindow(ctx, from, to)
}

func (s *TransactionService) FilteredView(selected *core.Date, month core.Month) []core.Transaction {
	return s.repo.FilteredView(selected, month)
}

func (s *TransactionService) Snapshot() []core.Transaction {
	return s.repo.Snapshot()
}

func (s *TransactionService) Loading() bool {
	return s.repo.Loading()
}

// Add persists a draft through the repository's optimistic path and, once
// confirmed, publishes a created event.
func (s *TransactionService) Add(ctx context.Context, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	confirmed, err := s.repo.Add(ctx, d)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishCreated(ctx, confirmed.ID)
	return confirmed, nil
}

// Remove deletes through the repository and publishes a deleted event.
func (s *TransactionService) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		return err
	}

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishDeleted(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish deleted event", "id", id, "error", err)
		// The delete is confirmed; eventing failure does not undo it.
	}
	return nil
}

// BulkAdd persists drafts in one store call and publishes created events
// for every confirmed row.
func (s *TransactionService) BulkAdd(ctx context.Context, drafts []core.Draft) ([]core.Transaction, error) {
	for _, d := range drafts {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("validate transaction: %w", err)
		}
	}

	confirmed, err := s.repo.BulkAdd(ctx, drafts)
	if err != nil {
		return nil, err
	}

	for _, tx := range confirmed {
		s.publishCreated(ctx, tx.ID)
	}
	return confirmed, nil
}

func (s *TransactionService) publishCreated(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCreated(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish created event", "id", id, "error", err)
	}
}

// Close releases the publisher, if any.
func (s *TransactionService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return errors.Join(errors.New("close transaction service"), err)
	}
	return nil
}
