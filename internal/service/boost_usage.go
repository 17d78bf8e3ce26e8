package service

import (
	"time"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/logger"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"

	"gorm.io/gorm"
)

const defaultRecordMaxRetries = 3

// SetRecordMaxRetries 设置落账重试次数（并发冲突时）
func (s *BoostService) SetRecordMaxRetries(n int) {
	if n > 0 {
		s.recordMaxRetries = n
	}
}

// SetBudgetExhaustedHook 设置全局预算耗尽时的回调（用于触发自动暂停）
func (s *BoostService) SetBudgetExhaustedHook(fn func(campaignID uint)) {
	s.onBudgetExhausted = fn
}

// RecordUsage 将一次加成计算结果落账。
//
// 同一订单重复调用幂等：已有用量记录时原样返回已落账结果。
// 落账在单个事务内完成：逐活动加锁复核额度、抢占总次数名额、
// 写用量记录并累加计数器。复核后额度不足的活动会被缩减或剔除，
// 返回的 Resolution 为实际生效的结果。
func (s *BoostService) RecordUsage(ctx OrderContext, resolution *Resolution) (*Resolution, error) {
	if resolution == nil || ctx.OrderID == 0 {
		return nil, ErrOrderNotFound
	}
	if len(resolution.Applied) == 0 {
		return resolution, nil
	}

	maxRetries := s.recordMaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultRecordMaxRetries
	}

	var recorded *Resolution
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		recorded, lastErr = s.recordOnce(ctx, resolution)
		if lastErr == nil {
			return recorded, nil
		}
		logger.Warnw("加成落账失败，准备重试",
			"order_id", ctx.OrderID,
			"attempt", attempt,
			"error", lastErr,
		)
	}
	return nil, lastErr
}

func (s *BoostService) recordOnce(ctx OrderContext, resolution *Resolution) (*Resolution, error) {
	var result *Resolution
	err := s.campaignRepo.Transaction(func(tx *gorm.DB) error {
		recorded, err := s.RecordUsageInTx(tx, ctx, resolution)
		if err != nil {
			return err
		}
		result = recorded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordUsageInTx 在外部事务内落账（订单创建等组合流程用），幂等语义同 RecordUsage
func (s *BoostService) RecordUsageInTx(tx *gorm.DB, ctx OrderContext, resolution *Resolution) (*Resolution, error) {
	if tx == nil || resolution == nil || ctx.OrderID == 0 {
		return nil, ErrOrderNotFound
	}
	result := &Resolution{
		BasePoints:   resolution.BasePoints,
		StackingMode: resolution.StackingMode,
		Exclusive:    resolution.Exclusive,
		Applied:      []AppliedBoost{},
	}
	campaignRepo := s.campaignRepo.WithTx(tx)
	usageRepo := s.usageRepo.WithTx(tx)

	existing, err := usageRepo.ListByOrder(ctx.OrderID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		for _, usage := range existing {
			result.Applied = append(result.Applied, AppliedBoost{
				CampaignID: usage.CampaignID,
				Points:     usage.PointsAwarded,
			})
			result.BoostPoints += usage.PointsAwarded
		}
		result.FinalPoints = result.BasePoints + result.BoostPoints
		return result, nil
	}

	now := ctx.at()
	for _, boost := range resolution.Applied {
		points, err := s.recordCampaignUsage(campaignRepo, usageRepo, ctx, boost, now)
		if err != nil {
			return nil, err
		}
		if points <= 0 {
			continue
		}
		applied := boost
		applied.Points = points
		result.Applied = append(result.Applied, applied)
		result.BoostPoints += points
	}
	result.FinalPoints = result.BasePoints + result.BoostPoints
	return result, nil
}

// recordCampaignUsage 在事务内为单个活动落账，返回实际生效的积分。
// 复核时额度不足则缩减，名额被抢占或活动已非进行中则剔除（返回 0）。
func (s *BoostService) recordCampaignUsage(
	campaignRepo *repository.GormCampaignRepository,
	usageRepo *repository.GormCampaignUsageRepository,
	ctx OrderContext,
	boost AppliedBoost,
	now time.Time,
) (int64, error) {
	campaign, err := campaignRepo.GetByIDForUpdate(boost.CampaignID)
	if err != nil {
		return 0, err
	}
	if campaign == nil || campaign.Status != constants.CampaignStatusActive {
		return 0, nil
	}

	points := boost.Points
	if campaign.MaxPointsPerCustomer > 0 && ctx.UserID != 0 {
		since := customerCapWindowStart(campaign, now)
		used, err := usageRepo.SumPointsByCampaignAndUserSince(campaign.ID, ctx.UserID, since)
		if err != nil {
			return 0, err
		}
		remaining := campaign.MaxPointsPerCustomer - used
		if remaining <= 0 {
			return 0, nil
		}
		if points > remaining {
			points = remaining
		}
	}

	exhausted := false
	if campaign.GlobalLimitEnabled && campaign.MaxTotalPoints > 0 {
		remaining := campaign.MaxTotalPoints - campaign.CurrentPointsAwarded
		if remaining <= 0 {
			s.notifyBudgetExhausted(campaign.ID)
			return 0, nil
		}
		if points > remaining {
			points = remaining
		}
		if campaign.CurrentPointsAwarded+points >= campaign.MaxTotalPoints {
			exhausted = true
		}
	}

	if campaign.MaxTotalUses > 0 {
		ok, err := campaignRepo.ReserveUse(campaign.ID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
	} else {
		if _, err := campaignRepo.ReserveUse(campaign.ID); err != nil {
			return 0, err
		}
	}

	newCustomer := false
	if ctx.UserID != 0 {
		seen, err := usageRepo.ExistsByCampaignAndUser(campaign.ID, ctx.UserID)
		if err != nil {
			return 0, err
		}
		newCustomer = !seen
	}

	usage := &models.CampaignUsage{
		CampaignID:    campaign.ID,
		UserID:        ctx.UserID,
		OrderID:       ctx.OrderID,
		PointsAwarded: points,
		BasePoints:    ctx.BasePoints,
		OrderValue:    ctx.OrderValue,
		Channel:       ctx.Channel,
		CreatedAt:     now,
	}
	if err := usageRepo.Create(usage); err != nil {
		return 0, err
	}
	if err := campaignRepo.ApplyUsageCounters(campaign.ID, points, ctx.OrderValue, newCustomer); err != nil {
		return 0, err
	}

	if exhausted {
		s.notifyBudgetExhausted(campaign.ID)
	}
	return points, nil
}

func (s *BoostService) notifyBudgetExhausted(campaignID uint) {
	if s.onBudgetExhausted == nil {
		return
	}
	s.onBudgetExhausted(campaignID)
}
