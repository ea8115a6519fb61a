package worker

import (
	"context"
	"time"

	"github.com/tablecart/internal/logger"
	"github.com/tablecart/internal/provider"
	"github.com/tablecart/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartSnapshotPurge, c.handleCartSnapshotPurge)
}

func (c *Consumer) handleCartSnapshotPurge(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.Container == nil || c.CartSnapshotRepo == nil {
		logger.Debugw("worker_cart_snapshot_purge_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseCartSnapshotPurgePayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_cart_snapshot_purge_unmarshal_failed", "error", err)
		return err
	}
	now := c.now()
	purged, err := c.CartSnapshotRepo.PurgeExpired(ctx, now)
	if err != nil {
		logger.Warnw("worker_cart_snapshot_purge_failed", "error", err)
		return err
	}
	if purged > 0 {
		logger.Infow("worker_cart_snapshot_purged", "count", purged, "requested_at", payload.RequestedAt, "cutoff", now)
	}
	return nil
}
