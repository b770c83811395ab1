// Package kv defines the key-value medium that record collections are persisted in.
package kv

import "context"

// Entry is a single key with its serialized value.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a keyed blob medium.
//
// Get returns errs.ErrNotFound when the key was never written. Put writes all
// entries or none of them.
type Store interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put atomically writes every entry.
	Put(ctx context.Context, entries ...Entry) error
	// Close releases the medium.
	Close() error
}
