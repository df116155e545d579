package cache

import (
	"context"
	"errors"
	"strings"

	"github.com/jonwraymond/credcache/keyschema"
)

// Sentinel errors for cache operations.
var (
	ErrNilStore      = errors.New("cache: store is nil")
	ErrInvalidKey    = errors.New("cache: key is invalid")
	ErrUnknownRecord = errors.New("cache: record type is unknown")
	ErrNotFound      = errors.New("cache: entry not found")
	ErrInvalidConfig = errors.New("cache: invalid config")
	ErrTokenExpired  = errors.New("cache: cached access token expired")
)

// Store holds cached records under opaque keys.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get never errors; it returns (nil, false) on miss. Delete is
//   idempotent.
type Store interface {
	// Get retrieves a record. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) (keyschema.Record, bool)

	// Set stores a record, replacing any record under the same key.
	Set(ctx context.Context, key string, rec keyschema.Record) error

	// Delete removes a record. No error on miss.
	Delete(ctx context.Context, key string) error

	// Keys returns every stored key, in no particular order.
	Keys(ctx context.Context) ([]string, error)

	// Clear removes every record.
	Clear(ctx context.Context) error
}

// ValidateKey checks that a key can be stored. Keys have no length limit.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
