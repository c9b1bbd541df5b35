package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInventorySnapshot recomputes stats over the whole product collection.
	TaskInventorySnapshot = "inventory:snapshot"
)

// InventorySnapshotPayload carries the trigger source for logging.
type InventorySnapshotPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewInventorySnapshotTask constructs an Asynq task.
func NewInventorySnapshotTask(payload InventorySnapshotPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInventorySnapshot, data), nil
}
