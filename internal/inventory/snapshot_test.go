package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectSnapshotWalksAllPages(t *testing.T) {
	gw := newStubGateway()
	first := numberedProducts(1, 100)
	first[0].Quantity = 1
	gw.pages[1] = Page{Items: first, Total: 130}
	gw.pages[2] = Page{Items: numberedProducts(101, 130), Total: 130}
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.FixedZone("x", 3600))

	snap, err := CollectSnapshot(context.Background(), gw, now)
	require.NoError(t, err)
	assert.Equal(t, []listCall{{1, SnapshotPageSize}, {2, SnapshotPageSize}}, gw.calls())
	assert.Equal(t, 130, snap.Stats.TotalProducts)
	assert.Equal(t, 130, snap.Products)
	assert.Equal(t, 1, snap.Stats.LowStockCount)
	assert.True(t, decimal.NewFromInt(129*20+1).Equal(snap.Stats.TotalValue))
	assert.Equal(t, time.UTC, snap.TakenAt.Location())
}

func TestCollectSnapshotStopsOnEmptyPage(t *testing.T) {
	gw := newStubGateway()
	gw.pages[1] = Page{Items: numberedProducts(1, 3), Total: 10}

	snap, err := CollectSnapshot(context.Background(), gw, time.Now())
	require.NoError(t, err)
	assert.Len(t, gw.calls(), 2)
	assert.Equal(t, 3, snap.Products)
	assert.Equal(t, 10, snap.Stats.TotalProducts)
}

func TestCollectSnapshotError(t *testing.T) {
	gw := newStubGateway()
	gw.listErr = ErrUnauthorized
	_, err := CollectSnapshot(context.Background(), gw, time.Now())
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSnapshotStore(client, time.Hour)
	ctx := context.Background()

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	snap := Snapshot{Stats: Stats{TotalProducts: 3, LowStockCount: 1, TotalValue: decimal.RequireFromString("12.50")}, Products: 3, TakenAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Save(ctx, snap))
	assert.Equal(t, time.Hour, mr.TTL(snapshotKey))

	latest, err = store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 3, latest.Stats.TotalProducts)
	assert.True(t, snap.Stats.TotalValue.Equal(latest.Stats.TotalValue))
	assert.True(t, snap.TakenAt.Equal(latest.TakenAt))

	mr.FastForward(2 * time.Hour)
	latest, err = store.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestNilSnapshotStore(t *testing.T) {
	var store *SnapshotStore
	latest, err := store.Latest(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, latest)
	assert.Error(t, store.Save(context.Background(), Snapshot{}))
}
