package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockdesk/stockdesk/internal/gateway"
	"github.com/stockdesk/stockdesk/internal/inventory"
	jobmetrics "github.com/stockdesk/stockdesk/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Authenticator exchanges the service credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (gateway.Token, error)
}

// SnapshotWriter persists a computed snapshot.
type SnapshotWriter interface {
	Save(ctx context.Context, snap inventory.Snapshot) error
}

// InventorySnapshotJob walks the whole product collection with a service
// account and stores the aggregated stats for the dashboard.
type InventorySnapshotJob struct {
	Auth     Authenticator
	Products func(token string) inventory.Gateway
	Store    SnapshotWriter
	Username string
	Password string
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics

	clock func() time.Time
}

// NewInventorySnapshotJob wires dependencies for the snapshot handler.
func NewInventorySnapshotJob(client *gateway.Client, store SnapshotWriter, username, password string, logger *slog.Logger, metrics *jobmetrics.Metrics) *InventorySnapshotJob {
	return &InventorySnapshotJob{
		Auth: client,
		Products: func(token string) inventory.Gateway {
			return client.Products(token)
		},
		Store:    store,
		Username: username,
		Password: password,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes inventory snapshot tasks.
func (j *InventorySnapshotJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Auth == nil || j.Products == nil || j.Store == nil {
		return errors.New("inventory snapshot: handler not configured")
	}
	var payload InventorySnapshotPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Reason == "" {
		payload.Reason = "schedule"
	}

	tracker := j.metrics().Track(TaskInventorySnapshot)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	logger.Info("starting inventory snapshot")
	start := j.now()

	token, err := j.Auth.Login(ctx, j.Username, j.Password)
	if err != nil {
		resultErr = err
		logger.Error("snapshot login", slog.Any("error", err))
		if errors.Is(err, inventory.ErrUnauthorized) {
			// Bad service credentials will not fix themselves on retry.
			return errors.Join(err, asynq.SkipRetry)
		}
		return resultErr
	}

	snap, err := inventory.CollectSnapshot(ctx, j.Products(token.Value), start)
	if err != nil {
		resultErr = err
		logger.Error("collect snapshot", slog.Any("error", err))
		return resultErr
	}
	if err := j.Store.Save(ctx, snap); err != nil {
		resultErr = err
		logger.Error("store snapshot", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed inventory snapshot",
		slog.Int("products", snap.Products),
		slog.Int("low_stock", snap.Stats.LowStockCount),
		slog.Duration("duration", j.now().Sub(start)))
	return resultErr
}

func (j *InventorySnapshotJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *InventorySnapshotJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *InventorySnapshotJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
