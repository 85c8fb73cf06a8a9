// Package store persists module source text, per-file metadata and the
// merged forest in a key-value blob store.
//
// Values are msgpack-encoded. Keys are namespaced strings ("source/...",
// "meta/...", "forest"); DiskStore maps each key to a file named by its
// xxh3 digest.
package store

import (
	"errors"
	"fmt"

	"github.com/zeebo/xxh3"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("store: not found")

// Store is a flat key-value blob store. Implementations are safe for
// concurrent use.
type Store interface {
	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte) error
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys returns every key with the given prefix, sorted.
	Keys(prefix string) ([]string, error)
}

// Digest returns the xxh3 digest of data as 16 hex digits.
func Digest(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

func keyDigest(key string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(key))
}
