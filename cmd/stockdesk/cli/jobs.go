package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/jobs"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type queueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	Close() error
}

// JobsCLI wraps manual management helpers for the snapshot job.
type JobsCLI struct {
	client    enqueuer
	inspector queueInspector
	snapshots inventory.SnapshotReader
}

// NewJobsCLI initialises the CLI helpers against the Redis at redisAddr.
// snapshots may be nil when only queue commands are used.
func NewJobsCLI(redisAddr string, snapshots inventory.SnapshotReader) *JobsCLI {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	return &JobsCLI{
		client:    asynq.NewClient(opts),
		inspector: asynq.NewInspector(opts),
		snapshots: snapshots,
	}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		err = errors.Join(err, c.inspector.Close())
	}
	if c.client != nil {
		err = errors.Join(err, c.client.Close())
	}
	return err
}

// Trigger enqueues a supported job by name.
func (c *JobsCLI) Trigger(ctx context.Context, name string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	var task *asynq.Task
	var err error
	switch name {
	case jobs.TaskInventorySnapshot:
		task, err = jobs.NewInventorySnapshotTask(jobs.InventorySnapshotPayload{Reason: "cli"})
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(jobs.QueueDefault), asynq.MaxRetry(3))
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
}

// InspectQueue reports the default queue counters.
func (c *JobsCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
		stats.Archived = info.Archived
	}
	return stats, nil
}

// SnapshotOptions defines the flags of the snapshot command.
type SnapshotOptions struct {
	Action     string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// SnapshotCommand runs one of the snapshot actions: run, show or queue.
// It returns the process exit code.
func (c *JobsCLI) SnapshotCommand(ctx context.Context, opts SnapshotOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	switch opts.Action {
	case "run":
		info, err := c.Trigger(ctx, jobs.TaskInventorySnapshot)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "snapshot run: %v\n", err)
			return 1
		}
		if opts.JSONOutput {
			return encode(opts, map[string]string{"id": info.ID, "queue": info.Queue})
		}
		_, _ = fmt.Fprintf(opts.Stdout, "enqueued %s on %s\n", info.ID, info.Queue)
		return 0
	case "show":
		if c.snapshots == nil {
			_, _ = fmt.Fprintln(opts.Stderr, "snapshot show: store not configured")
			return 1
		}
		snap, err := c.snapshots.Latest(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "snapshot show: %v\n", err)
			return 1
		}
		if snap == nil {
			_, _ = fmt.Fprintln(opts.Stderr, "snapshot show: no snapshot stored yet")
			return 3
		}
		if opts.JSONOutput {
			return encode(opts, snap)
		}
		_, _ = fmt.Fprintf(opts.Stdout, "taken at:   %s\n", snap.TakenAt.Format(time.RFC3339))
		_, _ = fmt.Fprintf(opts.Stdout, "products:   %d\n", snap.Stats.TotalProducts)
		_, _ = fmt.Fprintf(opts.Stdout, "low stock:  %d\n", snap.Stats.LowStockCount)
		_, _ = fmt.Fprintf(opts.Stdout, "value:      %s\n", snap.Stats.TotalValue.StringFixed(2))
		return 0
	case "queue":
		stats, err := c.InspectQueue(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "snapshot queue: %v\n", err)
			return 1
		}
		if opts.JSONOutput {
			return encode(opts, stats)
		}
		_, _ = fmt.Fprintf(opts.Stdout, "%s: pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
		return 0
	default:
		_, _ = fmt.Fprintf(opts.Stderr, "snapshot: unknown action %q (want run, show or queue)\n", opts.Action)
		return 2
	}
}

func encode(opts SnapshotOptions, v any) int {
	if err := json.NewEncoder(opts.Stdout).Encode(v); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}
