package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/franckalain/fitplan/internal/database"
)

// Collection keys. Each holds a JSON array.
const (
	AccountsKey = "accounts"
	RecordsKey  = "plan_records"
)

func load[T any](ctx context.Context, db database.DB, key string) ([]T, error) {
	data, err := db.Get(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, unavailable("read "+key, err)
	}
	return decode[T](key, data)
}

func decode[T any](key string, data []byte) ([]T, error) {
	items := []T{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, unavailable("decode "+key, err)
	}
	return items, nil
}

// modify applies fn to the collection under key in one atomic update.
func modify[T any](ctx context.Context, db database.DB, key string, fn func([]T) ([]T, error)) error {
	var fnErr error
	err := db.Update(ctx, key, func(current []byte) ([]byte, error) {
		items, err := decode[T](key, current)
		if err != nil {
			fnErr = err
			return nil, err
		}
		next, err := fn(items)
		if err != nil {
			fnErr = err
			return nil, err
		}
		return json.Marshal(next)
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return unavailable("write "+key, err)
	}
	return nil
}
