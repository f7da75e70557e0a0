// Package kvstore keeps providers and analytics events as JSON documents in a
// key-value store, one key per record, listed by key prefix.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get for a missing key
var ErrKeyNotFound = errors.New("key not found")

// Key prefixes. They match the records written by the first version of the
// site so existing data stays readable.
const (
	ProviderPrefix      = "craftsman:"
	ClickPrefix         = "click:"
	PageViewPrefix      = "pageview:"
	CategoryClickPrefix = "categoryclick:"
)

// Store is a flat key-value store with prefix listing
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key and reports whether it existed
	Delete(ctx context.Context, key string) (bool, error)
	// ListPrefix returns the values of every key starting with prefix, in no
	// particular order
	ListPrefix(ctx context.Context, prefix string) ([][]byte, error)
	// CountPrefix returns the number of keys starting with prefix
	CountPrefix(ctx context.Context, prefix string) (int, error)
}
