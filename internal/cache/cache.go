// Package cache provides the ephemeral key-value store used for cache-aside
// reads and for the per-user notification log. Values are serialized strings;
// every entry may carry its own TTL (zero means no expiry).
package cache

import (
	"context"
	"time"
)

// Store is the cache surface the services consume. Implementations must treat
// every operation as independent and non-blocking; a failing cache degrades to
// direct store access and must never block a read or write path.
type Store interface {
	// Get retrieves a value; ok is false when absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool)

	// Set stores a value with the given TTL. A zero TTL means the entry does
	// not expire (it can still be evicted by capacity).
	Set(ctx context.Context, key, value string, ttl time.Duration)

	// Delete removes a key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string)

	// Ping reports liveness.
	Ping(ctx context.Context) error
}

// Cleaner is implemented by stores that support expired-entry sweeps.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic cleanup for registered stores.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a store to the manager for cleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup begins periodic cleanup of all registered stores.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range m.caches {
				c.CleanExpired()
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop gracefully stops the cleanup routine.
func (m *Manager) Stop() {
	if m.stopCleanup != nil {
		close(m.stopCleanup)
		<-m.cleanupDone
	}
}
