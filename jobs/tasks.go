// Package jobs hosts the background worker and its task handlers.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMetricsWarmup pre-populates the dashboard metrics cache.
	TaskMetricsWarmup = "metrics:warmup"
)

// MetricsWarmupPayload configures a warmup run.
type MetricsWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewMetricsWarmupTask constructs an Asynq task for a dashboard warmup.
func NewMetricsWarmupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(MetricsWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMetricsWarmup, data), nil
}
