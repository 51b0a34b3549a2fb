// Package store defines the key-value contract the checklist persists through.
package store

import "context"

// PackedHistoryKey is the key under which the packed snapshot is stored.
const PackedHistoryKey = "packedHistory"

// Store is a string key-value store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
