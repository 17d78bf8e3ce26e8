package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/loyalty-next/internal/logger"
	"github.com/loyalty-next/internal/provider"
	"github.com/loyalty-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCampaignTransition, c.handleCampaignTransition)
	mux.HandleFunc(queue.TaskCampaignAutoPause, c.handleCampaignAutoPause)
	mux.HandleFunc(queue.TaskLedgerAudit, c.handleLedgerAudit)
}

func (c *Consumer) handleCampaignTransition(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_campaign_transition_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CampaignTransitionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_campaign_transition_unmarshal_failed", "error", err)
		return err
	}
	at := time.Now()
	if payload.TriggeredAt > 0 {
		at = time.Unix(payload.TriggeredAt, 0)
	}
	ended, err := c.CampaignScheduler.SweepExpired(at)
	if err != nil {
		logger.Warnw("worker_campaign_transition_sweep_failed", "error", err)
		return err
	}
	if ended > 0 {
		c.invalidateCampaignCache()
		logger.Infow("worker_campaign_transition_done", "ended", ended)
	}
	return nil
}

func (c *Consumer) handleCampaignAutoPause(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_campaign_auto_pause_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CampaignAutoPausePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_campaign_auto_pause_unmarshal_failed", "error", err)
		return err
	}
	if payload.CampaignID == 0 {
		logger.Debugw("worker_campaign_auto_pause_skip_invalid_payload", "campaign_id", payload.CampaignID)
		return nil
	}
	if err := c.CampaignScheduler.PauseExhausted(payload.CampaignID); err != nil {
		logger.Warnw("worker_campaign_auto_pause_failed", "campaign_id", payload.CampaignID, "error", err)
		return err
	}
	c.invalidateCampaignCache()
	return nil
}

func (c *Consumer) handleLedgerAudit(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_ledger_audit_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LedgerAuditPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_ledger_audit_unmarshal_failed", "error", err)
		return err
	}
	divergent, err := c.LoyaltyService.AuditAll(payload.BatchSize)
	if err != nil {
		logger.Warnw("worker_ledger_audit_failed", "error", err)
		return err
	}
	if len(divergent) > 0 {
		logger.Errorw("worker_ledger_audit_divergence", "user_ids", divergent)
	}
	return nil
}

func (c *Consumer) invalidateCampaignCache() {
	if c == nil || c.CampaignCache == nil {
		return
	}
	if err := c.CampaignCache.Invalidate(); err != nil {
		logger.Debugw("worker_campaign_cache_invalidate_failed", "error", err)
	}
}
