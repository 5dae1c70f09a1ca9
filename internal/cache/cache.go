package cache

import "time"

// Cache stores raw upstream payloads keyed by request fingerprint.
// Entries are overwritten on refresh and expire after their TTL.
//
// The memory implementation is the default; the Redis one exists for
// deployments running more than one worker process, where each process
// tolerating the others' staleness is acceptable because the database
// is the longer-lived source of truth.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}
