package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/kv"
)

// Store implements kv.Store over the kv_entries table.
type Store struct{ db *DB }

var _ kv.Store = (*Store)(nil)

// New constructs a store over an existing pool.
func New(db *DB) *Store { return &Store{db: db} }

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM kv_entries WHERE key=$1`
	var v []byte
	if err := s.db.Pool.QueryRow(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// Put upserts every entry inside one transaction.
func (s *Store) Put(ctx context.Context, entries ...kv.Entry) (err error) {
	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const ups = `
INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`
	for _, e := range entries {
		if _, err = tx.Exec(ctx, ups, e.Key, e.Value); err != nil {
			return fmt.Errorf("put %q: %w", e.Key, err)
		}
	}
	return nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	s.db.Pool.Close()
	return nil
}
