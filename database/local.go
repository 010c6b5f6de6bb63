package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Keys of the collections held by the local store. Each key holds one JSON array.
const (
	KeyAppointments = "@wuauser:appointments"
	KeyPets         = "@wuauser:pets"
	KeyServices     = "@wuauser:services"
	KeyVets         = "@wuauser:vets"
	KeyTransactions = "@wuauser:transactions"
	KeyBalances     = "@wuauser:balances"
)

// LocalDB serialises read-modify-write cycles over a KV backend.
type LocalDB struct {
	kv KV
	mu sync.Mutex
}

func NewLocalDB(kv KV) *LocalDB {
	return &LocalDB{kv: kv}
}

// View loads the collection stored under key.
func View[T any](ctx context.Context, db *LocalDB, key string) ([]T, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return load[T](ctx, db.kv, key)
}

// Mutate loads the collection under key, applies fn and writes the result back.
// Nothing is written when fn returns an error.
func Mutate[T any](ctx context.Context, db *LocalDB, key string, fn func([]T) ([]T, error)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items, err := load[T](ctx, db.kv, key)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("local store: encode %s: %w", key, err)
	}
	return db.kv.Set(ctx, key, b)
}

func load[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	b, err := kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var items []T
	if len(b) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("local store: decode %s: %w", key, err)
	}
	return items, nil
}
