// Package sqlite is the embedded-database TransactionStore backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"jarfin/internal/core"
	"jarfin/internal/store"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const selectColumns = `id, date, amount, category, type, description`

func (s *Store) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, store.Wrap("fetch all", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

func (s *Store) FetchRange(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions
		 WHERE date >= ? AND date <= ?
		 ORDER BY date DESC, id DESC`,
		from.String(), to.String())
	if err != nil {
		return nil, store.Wrap("fetch range", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

func (s *Store) Insert(ctx context.Context, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, store.Wrap("insert", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (date, amount, category, type, description)
		 VALUES (?, ?, ?, ?, ?)`,
		d.Date.String(), d.Amount.String(), d.Category, string(d.Type), d.Description)
	if err != nil {
		return core.Transaction{}, store.Wrap("insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, store.Wrap("insert", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"type", d.Type,
		"category", d.Category,
		"amount", d.Amount.String())

	return d.Confirmed(id), nil
}

// BulkInsert runs all inserts in one database transaction so a failure
// leaves no partial rows behind.
func (s *Store) BulkInsert(ctx context.Context, drafts []core.Draft) ([]core.Transaction, error) {
	for _, d := range drafts {
		if err := d.Validate(); err != nil {
			return nil, store.Wrap("bulk insert", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, store.Wrap("bulk insert", err)
	}
	defer tx.Rollback()

	out := make([]core.Transaction, 0, len(drafts))
	for _, d := range drafts {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (date, amount, category, type, description)
			 VALUES (?, ?, ?, ?, ?)`,
			d.Date.String(), d.Amount.String(), d.Category, string(d.Type), d.Description)
		if err != nil {
			return nil, store.Wrap("bulk insert", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, store.Wrap("bulk insert", err)
		}
		out = append(out, d.Confirmed(id))
	}

	if err := tx.Commit(); err != nil {
		return nil, store.Wrap("bulk insert", err)
	}

	slog.InfoContext(ctx, "Bulk insert committed", "count", len(out))
	return out, nil
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return store.Wrap("delete", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.Wrap("delete", err)
	}
	if affected == 0 {
		return store.Wrap("delete", store.ErrNotFound)
	}
	return nil
}

func scanAll(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			dateStr string
			amount  string
			txType  string
		)
		if err := rows.Scan(&t.ID, &dateStr, &amount, &t.Category, &txType, &t.Description); err != nil {
			return nil, store.Wrap("scan", err)
		}
		d, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, store.Wrap("scan", err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, store.Wrap("scan", err)
		}
		t.Date = d
		t.Amount = amt
		t.Type = core.TxType(txType)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("scan", err)
	}
	return out, nil
}

var _ store.TransactionStore = (*Store)(nil)
