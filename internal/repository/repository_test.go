package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jarfin/internal/core"
	"jarfin/internal/store"
	"jarfin/internal/store/memory"
)

var jan = core.Month{Year: 2026, Month: time.January}

func draft(date string, amount int64, category string, typ core.TxType, desc string) core.Draft {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Draft{
		Date:        d,
		Amount:      decimal.NewFromInt(amount),
		Category:    category,
		Type:        typ,
		Description: desc,
	}
}

// failingStore wraps a working store and fails selected operations.
type failingStore struct {
	store.TransactionStore
	failInsert bool
	failBulk   bool
	failDelete bool
}

var errBackend = errors.New("backend unavailable")

func (f *failingStore) Insert(ctx context.Context, d core.Draft) (core.Transaction, error) {
	if f.failInsert {
		return core.Transaction{}, store.Wrap("insert", errBackend)
	}
	return f.TransactionStore.Insert(ctx, d)
}

func (f *failingStore) BulkInsert(ctx context.Context, drafts []core.Draft) ([]core.Transaction, error) {
	if f.failBulk {
		return nil, store.Wrap("bulk insert", errBackend)
	}
	return f.TransactionStore.BulkInsert(ctx, drafts)
}

func (f *failingStore) DeleteByID(ctx context.Context, id int64) error {
	if f.failDelete {
		return store.Wrap("delete", errBackend)
	}
	return f.TransactionStore.DeleteByID(ctx, id)
}

// gatedStore blocks Insert until released so tests can inspect the
// working set during the optimistic window.
type gatedStore struct {
	store.TransactionStore
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Insert(ctx context.Context, d core.Draft) (core.Transaction, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.TransactionStore.Insert(ctx, d)
}

func sameSet(a, b []core.Transaction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !a[i].Amount.Equal(b[i].Amount) ||
			a[i].Description != b[i].Description || a[i].Optimistic != b[i].Optimistic {
			return false
		}
	}
	return true
}

func TestFetchReplacesWorkingSet(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	mem.Seed([]core.Draft{
		draft("2026-01-05", 100, "food", core.Expense, "groceries"),
		draft("2026-02-05", 200, "food", core.Expense, "next month"),
	})

	repo := New(mem)
	if err := repo.Fetch(ctx, jan); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	got := repo.Snapshot()
	if len(got) != 1 || got[0].Description != "groceries" {
		t.Fatalf("working set = %+v, want only the January row", got)
	}
	if repo.Loading() {
		t.Error("loading flag still set after fetch")
	}
}

func TestAddConfirmsOptimisticRecord(t *testing.T) {
	ctx := context.Background()
	repo := New(memory.New())

	confirmed, err := repo.Add(ctx, draft("2026-01-10", 50, "fun", core.Expense, "cinema"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if confirmed.ID <= 0 {
		t.Errorf("confirmed id = %d, want store-assigned positive id", confirmed.ID)
	}
	if confirmed.Optimistic {
		t.Error("confirmed record must not be optimistic")
	}

	got := repo.Snapshot()
	if len(got) != 1 || got[0].ID != confirmed.ID || got[0].Optimistic {
		t.Fatalf("working set = %+v, want single confirmed record", got)
	}
}

func TestAddRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	mem.Seed([]core.Draft{draft("2026-01-01", 10, "food", core.Expense, "existing")})

	repo := New(&failingStore{TransactionStore: mem, failInsert: true})
	if err := repo.Fetch(ctx, jan); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	before := repo.Snapshot()

	_, err := repo.Add(ctx, draft("2026-01-10", 50, "fun", core.Expense, "cinema"))
	if err == nil {
		t.Fatal("expected insert failure to propagate")
	}
	var storeErr *store.StoreError
	if !errors.As(err, &storeErr) {
		t.Errorf("error = %v, want StoreError", err)
	}

	// The working set must be exactly the pre-call set.
	if !sameSet(repo.Snapshot(), before) {
		t.Errorf("working set after rollback = %+v, want %+v", repo.Snapshot(), before)
	}
}

func TestRemoveRollsBackAndResorts(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	mem.Seed([]core.Draft{
		draft("2026-01-01", 10, "food", core.Expense, "oldest"),
		draft("2026-01-15", 20, "food", core.Expense, "middle"),
		draft("2026-01-31", 30, "food", core.Expense, "newest"),
	})

	repo := New(&failingStore{TransactionStore: mem, failDelete: true})
	if err := repo.Fetch(ctx, jan); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	// Delete the middle record; the store call fails.
	var middleID int64
	for _, tx := range repo.Snapshot() {
		if tx.Description == "middle" {
			middleID = tx.ID
		}
	}
	if err := repo.Remove(ctx, middleID); err == nil {
		t.Fatal("expected delete failure to propagate")
	}

	got := repo.Snapshot()
	if len(got) != 3 {
		t.Fatalf("working set size = %d, want 3 after rollback", len(got))
	}
	wantOrder := []string{"newest", "middle", "oldest"}
	for i, want := range wantOrder {
		if got[i].Description != want {
			t.Errorf("position %d = %s, want %s (date-descending after re-sort)", i, got[i].Description, want)
		}
	}
}

func TestRemoveUnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := New(&failingStore{TransactionStore: memory.New(), failDelete: true})

	// Nothing to restore, nothing to delete: no error even though the
	// store would fail.
	if err := repo.Remove(ctx, 12345); err != nil {
		t.Fatalf("remove of unknown id should be a no-op, got %v", err)
	}
}

func TestBulkAddLeavesSetUntouchedOnFailure(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	mem.Seed([]core.Draft{draft("2026-01-01", 10, "food", core.Expense, "existing")})

	repo := New(&failingStore{TransactionStore: mem, failBulk: true})
	if err := repo.Fetch(ctx, jan); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	before := repo.Snapshot()

	_, err := repo.BulkAdd(ctx, []core.Draft{
		draft("2026-01-20", 1, "buffer", core.Expense, "a"),
		draft("2026-01-20", 2, "investments", core.Income, "b"),
	})
	if err == nil {
		t.Fatal("expected bulk insert failure to propagate")
	}
	if !sameSet(repo.Snapshot(), before) {
		t.Errorf("working set changed on failed bulk add")
	}
}

func TestBulkAddPrependsConfirmed(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	mem.Seed([]core.Draft{draft("2026-01-01", 10, "food", core.Expense, "existing")})

	repo := New(mem)
	if err := repo.Fetch(ctx, jan); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	confirmed, err := repo.BulkAdd(ctx, []core.Draft{
		draft("2026-01-20", 1, "buffer", core.Expense, "a"),
		draft("2026-01-20", 2, "investments", core.Income, "b"),
	})
	if err != nil {
		t.Fatalf("bulk add: %v", err)
	}
	if len(confirmed) != 2 {
		t.Fatalf("confirmed = %d rows, want 2", len(confirmed))
	}

	got := repo.Snapshot()
	if len(got) != 3 {
		t.Fatalf("working set size = %d, want 3", len(got))
	}
	if got[0].Description != "a" || got[1].Description != "b" {
		t.Errorf("confirmed rows not prepended: %+v", got[:2])
	}
}

func TestOptimisticRecordWinsSameDayTie(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	mem.Seed([]core.Draft{draft("2026-01-10", 10, "food", core.Expense, "confirmed earlier")})

	gated := &gatedStore{
		TransactionStore: mem,
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	repo := New(gated)
	if err := repo.Fetch(ctx, jan); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := repo.Add(ctx, draft("2026-01-10", 20, "food", core.Expense, "just created"))
		done <- err
	}()
	<-gated.entered

	// During the optimistic window the provisional record shares its date
	// with a confirmed row; the newer record must still sort first.
	view := repo.FilteredView(nil, jan)
	if len(view) != 2 {
		t.Fatalf("view size = %d, want 2", len(view))
	}
	if view[0].Description != "just created" || !view[0].Optimistic {
		t.Errorf("position 0 = %q (optimistic=%v), want the provisional record first",
			view[0].Description, view[0].Optimistic)
	}

	close(gated.release)
	if err := <-done; err != nil {
		t.Fatalf("add: %v", err)
	}
}

func TestFilteredView(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	mem.Seed([]core.Draft{
		draft("2026-01-10", 10, "food", core.Expense, "first on day"),
		draft("2026-01-10", 20, "food", core.Expense, "second on day"),
		draft("2026-01-05", 30, "food", core.Expense, "earlier day"),
	})

	repo := New(mem)
	if err := repo.Fetch(ctx, jan); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	t.Run("month view sorted date desc, id desc", func(t *testing.T) {
		view := repo.FilteredView(nil, jan)
		if len(view) != 3 {
			t.Fatalf("view size = %d", len(view))
		}
		// Same-day tie: the higher (newer) id first.
		if view[0].Description != "second on day" || view[1].Description != "first on day" {
			t.Errorf("tie-break order wrong: %s, %s", view[0].Description, view[1].Description)
		}
		if view[2].Description != "earlier day" {
			t.Errorf("last = %s, want earlier day", view[2].Description)
		}
	})

	t.Run("selected date filters exactly", func(t *testing.T) {
		day := core.NewDate(2026, time.January, 5)
		view := repo.FilteredView(&day, jan)
		if len(view) != 1 || view[0].Description != "earlier day" {
			t.Errorf("view = %+v", view)
		}
	})
}

func TestInterleavedAddAndRemove(t *testing.T) {
	// A failed optimistic add must roll back its own record even when an
	// unrelated mutation landed in between.
	ctx := context.Background()
	mem := memory.New()
	mem.Seed([]core.Draft{draft("2026-01-01", 10, "food", core.Expense, "existing")})

	failing := &failingStore{TransactionStore: mem}
	repo := New(failing)
	if err := repo.Fetch(ctx, jan); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	failing.failInsert = true
	_, addErr := repo.Add(ctx, draft("2026-01-20", 5, "fun", core.Expense, "doomed"))
	if addErr == nil {
		t.Fatal("expected add failure")
	}

	failing.failInsert = false
	if _, err := repo.Add(ctx, draft("2026-01-21", 7, "fun", core.Expense, "survivor")); err != nil {
		t.Fatalf("second add: %v", err)
	}

	for _, tx := range repo.Snapshot() {
		if tx.Description == "doomed" {
			t.Error("rolled-back record still present")
		}
		if tx.Optimistic {
			t.Errorf("record %d still optimistic", tx.ID)
		}
	}
}
