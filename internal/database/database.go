package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Layout version of the collections stored under the keys below.
const SchemaVersion = 1

const versionKey = "schema_version"

var (
	// ErrNotFound is returned by Get when the key has never been written
	ErrNotFound = errors.New("key not found")
	// ErrUnsupportedVersion means the data was written by a newer release
	ErrUnsupportedVersion = errors.New("unsupported storage schema version")
	// ErrEmbeddedCredentials rejects postgres URLs carrying a password
	ErrEmbeddedCredentials = errors.New("connection string must not contain a password")
)

// DB is a durable key-value store holding one JSON document per key.
type DB interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// Update atomically replaces the value under key with fn's result. fn
	// receives nil when the key is absent; returning an error aborts.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
	Close() error
}

// Open picks a backend from the DSN: postgres:// and postgresql:// URLs use
// PostgreSQL, anything else is a SQLite file path. The schema version is
// checked before the handle is returned.
func Open(ctx context.Context, dsn string) (DB, error) {
	var (
		db  DB
		err error
	)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if HasEmbeddedCredentials(dsn) {
			return nil, ErrEmbeddedCredentials
		}
		db, err = NewPostgresDB(dsn)
	} else {
		db, err = NewSQLiteDB(dsn)
	}
	if err != nil {
		return nil, err
	}

	if err := EnsureVersion(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// HasEmbeddedCredentials reports whether a postgres URL carries a password.
func HasEmbeddedCredentials(dsn string) bool {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return false
	}
	_, ok := u.User.Password()
	return ok
}

// EnsureVersion stamps a fresh store with SchemaVersion and refuses stores
// written with a newer layout.
func EnsureVersion(ctx context.Context, db DB) error {
	return db.Update(ctx, versionKey, func(current []byte) ([]byte, error) {
		if current == nil {
			return []byte(strconv.Itoa(SchemaVersion)), nil
		}
		v, err := strconv.Atoi(strings.TrimSpace(string(current)))
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %q: %w", current, err)
		}
		if v > SchemaVersion {
			return nil, fmt.Errorf("%w: found %d, supported %d", ErrUnsupportedVersion, v, SchemaVersion)
		}
		return current, nil
	})
}
