// Package kvstore is the generic key-value persistence layer. Values are
// strings (JSON in practice); lists and scalars are encoded by helpers on
// top of Get and Batch.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrCorrupt marks a stored value that cannot be decoded as a whole.
var ErrCorrupt = errors.New("kvstore: corrupt value")

// Store is implemented by GormStore and MemoryStore.
type Store interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Apply writes every operation of the batch or none of them.
	Apply(ctx context.Context, b Batch) error
	// Snapshot returns every key with its (decrypted) value.
	Snapshot(ctx context.Context) (map[string]string, error)
}

type op struct {
	key   string
	value string
}

// Batch is an ordered set of writes applied as one unit.
type Batch struct {
	ops []op
}

// Set queues key=value.
func (b *Batch) Set(key, value string) {
	b.ops = append(b.ops, op{key: key, value: value})
}

// SetList queues items (a slice) encoded as a JSON array.
func (b *Batch) SetList(key string, items any) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode list %q: %w", key, err)
	}
	if string(raw) == "null" {
		raw = []byte("[]")
	}
	if len(raw) == 0 || raw[0] != '[' {
		return fmt.Errorf("encode list %q: value is not a list", key)
	}
	b.Set(key, string(raw))
	return nil
}

// SetScalar queues a scalar value.
func (b *Batch) SetScalar(key string, value fmt.Stringer) {
	b.Set(key, value.String())
}

// Len is the number of queued operations.
func (b Batch) Len() int {
	return len(b.ops)
}

// Keys lists the touched keys in sorted order.
func (b Batch) Keys() []string {
	seen := make(map[string]bool, len(b.ops))
	keys := make([]string, 0, len(b.ops))
	for _, o := range b.ops {
		if !seen[o.key] {
			seen[o.key] = true
			keys = append(keys, o.key)
		}
	}
	sort.Strings(keys)
	return keys
}

// LoadList returns the elements stored under key without decoding them, so
// callers can skip individual bad elements. A missing key is an empty list.
func LoadList(ctx context.Context, s Store, key string) ([]json.RawMessage, error) {
	value, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, fmt.Errorf("%w: key %q: %v", ErrCorrupt, key, err)
	}
	return items, nil
}

// LoadScalar returns the trimmed scalar under key.
func LoadScalar(ctx context.Context, s Store, key string) (string, bool, error) {
	value, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	return strings.TrimSpace(value), true, nil
}
