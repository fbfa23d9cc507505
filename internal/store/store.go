// Package store defines the minimal contract the load harness and CLI
// consume. Backends differ only in what happens behind Set.
package store

import "errors"

// ErrClosed is returned for any operation after Close.
var ErrClosed = errors.New("store is closed")

// Store is a key-value store under benchmark. Implementations must be
// safe for concurrent use by many goroutines.
type Store interface {
	// Get returns the current value for key, and whether it exists.
	Get(key string) (string, bool, error)

	// Set installs value under key. The write is visible to subsequent
	// Gets immediately, independent of persistence.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close stops accepting operations and persists outstanding state.
	// A clean Close loses no writes; a hard kill may, by design.
	Close() error
}
