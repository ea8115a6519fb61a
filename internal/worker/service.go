package worker

import (
	"context"
	"errors"
	"time"

	"github.com/tablecart/internal/config"
	"github.com/tablecart/internal/logger"
	"github.com/tablecart/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	purgeInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer, purgeInterval time.Duration) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		purgeInterval: purgeInterval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Container != nil && s.consumer.UsesDatabaseSlot() {
		go runSnapshotPurgeLoop(ctx, s.consumer.QueueClient, s.purgeInterval)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// snapshotPurgeEnqueuer 推送快照清理任务
type snapshotPurgeEnqueuer interface {
	EnqueueCartSnapshotPurge(payload queue.CartSnapshotPurgePayload, unique time.Duration, opts ...asynq.Option) error
}

// runSnapshotPurgeLoop 定期推送清理任务。多个实例同时运行时依靠 unique 去重。
func runSnapshotPurgeLoop(ctx context.Context, client snapshotPurgeEnqueuer, interval time.Duration) {
	if client == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	runOnce := func() {
		payload := queue.CartSnapshotPurgePayload{RequestedAt: time.Now()}
		if err := client.EnqueueCartSnapshotPurge(payload, interval); err != nil {
			logger.Warnw("worker_cart_snapshot_purge_enqueue_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
