package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresDB implements DB on a shared PostgreSQL server. Passwords come
// from the environment (PGPASSWORD) or .pgpass, never from the URL.
type PostgresDB struct {
	db *sql.DB
}

func NewPostgresDB(connStr string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}
	return &PostgresDB{db: db}, nil
}

func (p *PostgresDB) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := p.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (p *PostgresDB) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, "DELETE FROM kv WHERE key = $1", key)
	return err
}

// Update locks the row with SELECT ... FOR UPDATE. A placeholder row is
// inserted first so the lock also covers keys that do not exist yet.
func (p *PostgresDB) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES ($1, '', $2)
		ON CONFLICT (key) DO NOTHING`, key, time.Now().UTC())
	if err != nil {
		return err
	}
	created, _ := res.RowsAffected()

	var value string
	if err := tx.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = $1 FOR UPDATE", key).Scan(&value); err != nil {
		return err
	}

	var current []byte
	if created == 0 {
		current = []byte(value)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE kv SET value = $2, updated_at = $3 WHERE key = $1",
		key, string(next), time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

func (p *PostgresDB) Close() error {
	return p.db.Close()
}
