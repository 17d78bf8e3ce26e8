package queue

import (
	"encoding/json"

	"github.com/loyalty-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCampaignTransition 活动档期巡检任务
	TaskCampaignTransition = constants.TaskCampaignTransition
	// TaskCampaignAutoPause 活动预算耗尽自动暂停任务
	TaskCampaignAutoPause = constants.TaskCampaignAutoPause
	// TaskLedgerAudit 积分台账一致性巡检任务
	TaskLedgerAudit = constants.TaskLedgerAudit
)

// CampaignTransitionPayload 活动档期巡检任务载荷
type CampaignTransitionPayload struct {
	TriggeredAt int64 `json:"triggered_at"`
}

// CampaignAutoPausePayload 活动自动暂停任务载荷
type CampaignAutoPausePayload struct {
	CampaignID uint `json:"campaign_id"`
}

// LedgerAuditPayload 台账一致性巡检任务载荷
type LedgerAuditPayload struct {
	BatchSize int `json:"batch_size"`
}

// NewCampaignTransitionTask 创建活动档期巡检任务
func NewCampaignTransitionTask(payload CampaignTransitionPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCampaignTransition, body), nil
}

// NewCampaignAutoPauseTask 创建活动自动暂停任务
func NewCampaignAutoPauseTask(payload CampaignAutoPausePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCampaignAutoPause, body), nil
}

// NewLedgerAuditTask 创建台账巡检任务
func NewLedgerAuditTask(payload LedgerAuditPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerAudit, body), nil
}
