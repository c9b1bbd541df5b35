package inventory

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Dashboard is the data behind the landing page.
type Dashboard struct {
	Stats  Stats
	Recent []Product
	// Snapshot covers the whole collection when the snapshot job has run.
	Snapshot *Snapshot
}

// SnapshotReader provides the latest full inventory snapshot, if any.
type SnapshotReader interface {
	Latest(ctx context.Context) (*Snapshot, error)
}

// DashboardLoader loads dashboards for one gateway.
type DashboardLoader struct {
	Snapshots SnapshotReader
	Logger    *slog.Logger
}

// LoadDashboard fetches the first DashboardRecentSize products and derives the
// stats from them, with the server total as product count. A nil snapshots
// reader is allowed.
func LoadDashboard(ctx context.Context, gw Gateway, notifier Notifier, snapshots SnapshotReader) (Dashboard, error) {
	return DashboardLoader{Snapshots: snapshots}.Load(ctx, gw, notifier)
}

// Load is LoadDashboard with logging.
func (l DashboardLoader) Load(ctx context.Context, gw Gateway, notifier Notifier) (Dashboard, error) {
	notifier = notifierOrDiscard(notifier)

	var (
		page     Page
		snapshot *Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = gw.List(gctx, 1, DashboardRecentSize)
		return err
	})
	if l.Snapshots != nil {
		// A missing snapshot must not cancel the page fetch, so the group
		// context is not used here and errors are swallowed.
		g.Go(func() error {
			snap, err := l.Snapshots.Latest(ctx)
			if err != nil {
				if l.Logger != nil {
					l.Logger.Warn("read inventory snapshot", slog.Any("error", err))
				}
				return nil
			}
			snapshot = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if l.Logger != nil {
			l.Logger.Error("load dashboard", slog.Any("error", err))
		}
		notifier.Notify(LevelError, MsgLoadDashboardFailed)
		return Dashboard{}, err
	}

	stats := ComputeStats(page.Items)
	stats.TotalProducts = page.Total
	return Dashboard{
		Stats:    stats,
		Recent:   append([]Product(nil), page.Items...),
		Snapshot: snapshot,
	}, nil
}
