package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SnapshotPageSize is the page size used when walking the whole collection.
	SnapshotPageSize = 100
	snapshotKey      = "stockdesk:inventory:snapshot"
	maxSnapshotPages = 10000
)

// Snapshot is a whole-collection stats record produced by the snapshot job.
type Snapshot struct {
	Stats    Stats     `json:"stats"`
	Products int       `json:"products"`
	TakenAt  time.Time `json:"taken_at"`
}

// CollectSnapshot walks every page of the collection and aggregates it.
func CollectSnapshot(ctx context.Context, gw Gateway, now time.Time) (Snapshot, error) {
	var all []Product
	total := 0
	for page := 1; page <= maxSnapshotPages; page++ {
		result, err := gw.List(ctx, page, SnapshotPageSize)
		if err != nil {
			return Snapshot{}, fmt.Errorf("collect snapshot page %d: %w", page, err)
		}
		total = result.Total
		all = append(all, result.Items...)
		if len(result.Items) == 0 || len(all) >= total {
			break
		}
	}
	stats := ComputeStats(all)
	stats.TotalProducts = total
	return Snapshot{Stats: stats, Products: len(all), TakenAt: now.UTC()}, nil
}

// SnapshotStore keeps the latest snapshot in Redis.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore builds a store. A zero ttl keeps the snapshot until replaced.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

// Save replaces the stored snapshot.
func (s *SnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	if s == nil || s.client == nil {
		return errors.New("inventory: snapshot store not configured")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, snapshotKey, raw, s.ttl).Err()
}

// Latest returns the stored snapshot, or nil when none exists.
func (s *SnapshotStore) Latest(ctx context.Context) (*Snapshot, error) {
	if s == nil || s.client == nil {
		return nil, nil
	}
	raw, err := s.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
