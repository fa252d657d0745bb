// Package postgres is the remote TransactionStore backend, a pgx-backed
// transactions table.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"jarfin/internal/core"
	"jarfin/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against the given URL and ensures the transactions
// table exists.
func Connect(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id          BIGSERIAL PRIMARY KEY,
			date        DATE NOT NULL,
			amount      NUMERIC(20,8) NOT NULL,
			category    TEXT NOT NULL,
			type        TEXT NOT NULL CHECK (type IN ('income', 'expense')),
			description TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const selectColumns = `id, date::text, amount::text, category, type, description`

func (s *Store) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM transactions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, store.Wrap("fetch all", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

func (s *Store) FetchRange(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM transactions
		 WHERE date >= $1 AND date <= $2
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

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO transactions (date, amount, category, type, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		d.Date.String(), d.Amount.String(), d.Category, string(d.Type), d.Description,
	).Scan(&id)
	if err != nil {
		return core.Transaction{}, store.Wrap("insert", err)
	}
	return d.Confirmed(id), nil
}

// BulkInsert wraps all inserts in one database transaction.
func (s *Store) BulkInsert(ctx context.Context, drafts []core.Draft) ([]core.Transaction, error) {
	for _, d := range drafts {
		if err := d.Validate(); err != nil {
			return nil, store.Wrap("bulk insert", err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, store.Wrap("bulk insert", err)
	}
	defer tx.Rollback(ctx)

	out := make([]core.Transaction, 0, len(drafts))
	for _, d := range drafts {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO transactions (date, amount, category, type, description)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			d.Date.String(), d.Amount.String(), d.Category, string(d.Type), d.Description,
		).Scan(&id)
		if err != nil {
			return nil, store.Wrap("bulk insert", err)
		}
		out = append(out, d.Confirmed(id))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, store.Wrap("bulk insert", err)
	}
	return out, nil
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return store.Wrap("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return store.Wrap("delete", store.ErrNotFound)
	}
	return nil
}

func scanAll(rows pgx.Rows) ([]core.Transaction, error) {
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
