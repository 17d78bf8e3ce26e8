package worker

import (
	"context"
	"errors"
	"time"

	"github.com/loyalty-next/internal/config"
	"github.com/loyalty-next/internal/logger"
	"github.com/loyalty-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer

	sweepInterval time.Duration
	auditInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, boostCfg *config.BoostConfig, consumer *Consumer) (*Service, error) {
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

	sweep := time.Minute
	audit := time.Hour
	if boostCfg != nil {
		if boostCfg.ScheduleSweepSeconds > 0 {
			sweep = time.Duration(boostCfg.ScheduleSweepSeconds) * time.Second
		}
		if boostCfg.LedgerAuditSweepSeconds > 0 {
			audit = time.Duration(boostCfg.LedgerAuditSweepSeconds) * time.Second
		}
	}
	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		sweepInterval: sweep,
		auditInterval: audit,
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
	if s.consumer != nil && s.consumer.QueueClient.Enabled() {
		go s.runScheduleSweepLoop(ctx)
		go s.runLedgerAuditLoop(ctx)
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

// runScheduleSweepLoop 周期性投递活动档期巡检任务
func (s *Service) runScheduleSweepLoop(ctx context.Context) {
	runOnce := func() {
		payload := queue.CampaignTransitionPayload{TriggeredAt: time.Now().Unix()}
		if err := s.consumer.QueueClient.EnqueueCampaignTransition(payload); err != nil {
			logger.Warnw("worker_enqueue_campaign_transition_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
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

// runLedgerAuditLoop 周期性投递台账一致性巡检任务
func (s *Service) runLedgerAuditLoop(ctx context.Context) {
	ticker := time.NewTicker(s.auditInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.consumer.QueueClient.EnqueueLedgerAudit(queue.LedgerAuditPayload{}, 0); err != nil {
				logger.Warnw("worker_enqueue_ledger_audit_failed", "error", err)
			}
		}
	}
}
