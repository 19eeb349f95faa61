package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/printloom/printloom/internal/metrics"
)

// DashboardWarmer is the slice of the metrics service the warmup job needs.
type DashboardWarmer interface {
	DashboardMetrics(ctx context.Context) (metrics.SalesMetrics, error)
}

// MetricsWarmupJob pre-populates the dashboard metrics cache so the first
// request after a quiet period does not pay the full ledger scan.
type MetricsWarmupJob struct {
	Metrics DashboardWarmer
	Logger  *slog.Logger
}

// NewMetricsWarmupJob wires dependencies for the warmup handler.
func NewMetricsWarmupJob(metricsSvc DashboardWarmer, logger *slog.Logger) *MetricsWarmupJob {
	return &MetricsWarmupJob{Metrics: metricsSvc, Logger: logger}
}

// Handle processes TaskMetricsWarmup tasks.
func (j *MetricsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Metrics == nil {
		return errors.New("metrics warmup: handler not configured")
	}
	var payload MetricsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("reason", payload.Reason))
	logger.Info("starting metrics warmup")

	result, err := j.Metrics.DashboardMetrics(ctx)
	if err != nil {
		logger.Error("warm dashboard metrics", slog.Any("error", err))
		return err
	}

	logger.Info("metrics warmup complete",
		slog.Int64("total_sales", result.TotalSales),
		slog.Int64("total_revenue", result.TotalRevenue),
	)
	return nil
}

func (j *MetricsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
