package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore serializes concurrent updates with row locks, which makes it
// safe for several processes sharing one database.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, kvSchema); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key=$1 AND value <> 'null'::jsonb`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx, `INSERT INTO kv_store (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM kv_store WHERE key=$1`, key)
	return err
}

func (s *PostgresStore) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// A placeholder row gives FOR UPDATE something to lock when the key is new.
	if _, err := tx.Exec(ctx, `INSERT INTO kv_store (key, value) VALUES ($1, 'null'::jsonb) ON CONFLICT (key) DO NOTHING`, key); err != nil {
		return err
	}

	var current []byte
	if err := tx.QueryRow(ctx, `SELECT value FROM kv_store WHERE key=$1 FOR UPDATE`, key).Scan(&current); err != nil {
		return err
	}
	if string(current) == "null" {
		current = nil
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE kv_store SET value=$2, updated_at=now() WHERE key=$1`, key, next); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ Store = (*PostgresStore)(nil)
