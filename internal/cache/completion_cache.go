// Package cache keeps last-known-good completion snapshots in Redis so
// the dashboard can degrade gracefully when the submission or roster
// feeds are unavailable. Snapshots carry an explicit StoredAt stamp;
// staleness is the reader's call, never hidden.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

// Snapshot is a cached completion result for one business date.
type Snapshot struct {
	Date     string                        `json:"date"`
	Views    []domain.OutletCompletionView `json:"views"`
	StoredAt time.Time                     `json:"stored_at"`
}

// CompletionCache stores and loads snapshots.
type CompletionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCompletionCache builds the cache. A nil client disables it; Get
// then always misses and Put is a no-op.
func NewCompletionCache(client *redis.Client, ttl time.Duration) *CompletionCache {
	return &CompletionCache{client: client, ttl: ttl}
}

// Put stores the snapshot for its date.
func (c *CompletionCache) Put(ctx context.Context, snapshot Snapshot) error {
	if c == nil || c.client == nil {
		return nil
	}
	snapshot.StoredAt = time.Now()
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("cache: encode snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey(snapshot.Date), payload, c.ttl).Err()
}

// Get loads the snapshot for a date. The second return is false on a
// miss (or when the cache is disabled).
func (c *CompletionCache) Get(ctx context.Context, date string) (Snapshot, bool) {
	if c == nil || c.client == nil {
		return Snapshot{}, false
	}
	payload, err := c.client.Get(ctx, snapshotKey(date)).Bytes()
	if err != nil {
		return Snapshot{}, false
	}
	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return Snapshot{}, false
	}
	return snapshot, true
}

func snapshotKey(date string) string {
	return "completion:snapshot:" + date
}
