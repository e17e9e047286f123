// Package store provides the opaque key-value blob persistence behind the
// provider catalog and pricing caches, plus a SQLite ledger that accumulates
// per-call usage and cost.
package store

// Store persists opaque JSON blobs under string keys. Implementations must
// make Put atomic so readers never observe a partially written value.
type Store interface {
	// Get returns the blob stored under key, or (nil, nil) when absent.
	Get(key string) ([]byte, error)
	// Put replaces the blob stored under key.
	Put(key string, value []byte) error
}
