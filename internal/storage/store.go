// Package storage persists JSON documents under well-known keys.
//
// Every backend implements Update as an atomic read-modify-write, so concurrent
// writers to the same key never lose each other's changes.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the persisted application state.
const (
	KeyCurrentUser = "currentUser"
	KeyUsers       = "users"
	KeyBookings    = "bookings"
	KeyDraft       = "bookingDraft"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrConflict    = errors.New("concurrent update conflict")
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Update replaces the value of key with the result of fn. current is nil when
	// the key is absent. Nothing is written when fn fails.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}

// GetJSON decodes the value under key. ok is false when the key is absent.
func GetJSON[T any](ctx context.Context, s Store, key string) (v T, ok bool, err error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

// UpdateJSON atomically decodes, mutates and re-encodes the value under key.
// fn receives the zero value when the key is absent.
func UpdateJSON[T any](ctx context.Context, s Store, key string, fn func(v *T) error) error {
	return s.Update(ctx, key, func(current []byte) ([]byte, error) {
		var v T
		if len(current) > 0 {
			if err := json.Unmarshal(current, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
		}
		if err := fn(&v); err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
}
