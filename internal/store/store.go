// Package store provides durable client-side state persistence.
package store

import "context"

// Repository defines the interface for persisting client-side key/value state.
type Repository interface {
	// GetValue retrieves the value stored under key. Returns "" with a nil
	// error when the key is absent.
	GetValue(ctx context.Context, key string) (string, error)

	// SetValue creates or replaces the value stored under key.
	SetValue(ctx context.Context, key, value string) error

	// DeleteValue removes the value stored under key. Deleting an absent key
	// is a no-op.
	DeleteValue(ctx context.Context, key string) error

	// Ping verifies storage connectivity and returns an error if the database
	// is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
