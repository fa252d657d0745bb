package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jarfin/internal/core"
	"jarfin/internal/store"
)

func draft(date string, amount int64, desc string) core.Draft {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Draft{
		Date:        d,
		Amount:      decimal.NewFromInt(amount),
		Category:    "food",
		Type:        core.Expense,
		Description: desc,
	}
}

func TestInsertAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.Insert(ctx, draft("2026-01-01", 10, "a"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := s.Insert(ctx, draft("2026-01-02", 20, "b"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Errorf("ids = %d, %d; want 1, 2", first.ID, second.ID)
	}
}

func TestInsertRejectsInvalidDraft(t *testing.T) {
	s := New()
	bad := draft("2026-01-01", 10, "a")
	bad.Type = "transfer"
	if _, err := s.Insert(context.Background(), bad); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestFetchRangeInclusiveBounds(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed([]core.Draft{
		draft("2025-12-31", 1, "before"),
		draft("2026-01-01", 2, "first"),
		draft("2026-01-31", 3, "last"),
		draft("2026-02-01", 4, "after"),
	})

	got, err := s.FetchRange(ctx, core.NewDate(2026, time.January, 1), core.NewDate(2026, time.January, 31))
	if err != nil {
		t.Fatalf("fetch range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	// Date descending.
	if got[0].Description != "last" || got[1].Description != "first" {
		t.Errorf("order = %s, %s", got[0].Description, got[1].Description)
	}
}

func TestBulkInsertAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()

	bad := draft("2026-01-02", 2, "b")
	bad.Category = ""
	_, err := s.BulkInsert(ctx, []core.Draft{draft("2026-01-01", 1, "a"), bad})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	all, err := s.FetchAll(ctx)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("store holds %d rows after failed bulk insert, want 0", len(all))
	}
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx, err := s.Insert(ctx, draft("2026-01-01", 10, "a"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.DeleteByID(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteByID(ctx, tx.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
