// Package cache holds AI responses for a short window so identical lookups
// do not reach the generative service again.
package cache

import (
	"context"
	"strings"
	"time"
)

const (
	// DefaultTTL is how long an entry stays fresh.
	DefaultTTL = 600 * time.Second
	// DefaultMaxEntries bounds the number of entries held.
	DefaultMaxEntries = 100
)

// ResponseCache is a bounded, time-expiring key/value store.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Keys are normalised with NormalizeKey before every lookup or write.
//   - Errors: never surfaced. A backend failure is a miss on Get and a
//     dropped write on Set.
type ResponseCache interface {
	// Get returns the value for key if present and not expired.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key, replacing any previous entry and restarting
	// its TTL. The least recently used entry is evicted when full.
	Set(ctx context.Context, key, value string)
}

// NormalizeKey trims surrounding whitespace and case-folds key.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
