package cache

import "time"

// BytesCache stores serialized summary payloads keyed by symbol and range.
// ok is false on a miss; err is reserved for backend failures so a miss
// never looks like an outage.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
