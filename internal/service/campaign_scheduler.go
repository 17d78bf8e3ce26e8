package service

import (
	"time"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/logger"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"
)

// CampaignScheduler 活动档期巡检
//
// 周期性由异步任务触发：结束已过期的活动、
// 暂停全局预算耗尽的活动。活动的启用始终由管理端显式操作。
type CampaignScheduler struct {
	campaignRepo repository.CampaignRepository
}

// NewCampaignScheduler 创建活动档期巡检
func NewCampaignScheduler(campaignRepo repository.CampaignRepository) *CampaignScheduler {
	return &CampaignScheduler{campaignRepo: campaignRepo}
}

// SweepExpired 结束档期已过的活动，返回处理数量
func (s *CampaignScheduler) SweepExpired(now time.Time) (int, error) {
	campaigns, err := s.campaignRepo.ListByStatus(
		constants.CampaignStatusActive,
		constants.CampaignStatusPaused,
	)
	if err != nil {
		return 0, err
	}

	ended := 0
	for i := range campaigns {
		campaign := &campaigns[i]
		if !campaignDatePassed(campaign, now) {
			continue
		}
		if err := s.campaignRepo.UpdateStatus(campaign.ID, constants.CampaignStatusEnded, nil); err != nil {
			logger.Errorw("结束过期活动失败", "campaign_id", campaign.ID, "error", err)
			continue
		}
		logger.Infow("活动档期已过，自动结束",
			"campaign_id", campaign.ID,
			"name", campaign.Name,
			"end_date", campaign.EndDate,
		)
		ended++
	}
	return ended, nil
}

// SweepExhausted 暂停全局预算已耗尽的进行中活动，返回处理数量
func (s *CampaignScheduler) SweepExhausted() (int, error) {
	campaigns, err := s.campaignRepo.ListByStatus(constants.CampaignStatusActive)
	if err != nil {
		return 0, err
	}

	paused := 0
	for i := range campaigns {
		campaign := &campaigns[i]
		if !campaign.GlobalLimitEnabled || campaign.MaxTotalPoints <= 0 {
			continue
		}
		if campaign.CurrentPointsAwarded < campaign.MaxTotalPoints {
			continue
		}
		if err := s.PauseExhausted(campaign.ID); err != nil {
			logger.Errorw("暂停预算耗尽活动失败", "campaign_id", campaign.ID, "error", err)
			continue
		}
		paused++
	}
	return paused, nil
}

// PauseExhausted 暂停单个预算耗尽的活动（幂等，仅 active 生效）
func (s *CampaignScheduler) PauseExhausted(campaignID uint) error {
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return err
	}
	if campaign == nil || campaign.Status != constants.CampaignStatusActive {
		return nil
	}
	if !campaign.GlobalLimitEnabled || campaign.MaxTotalPoints <= 0 ||
		campaign.CurrentPointsAwarded < campaign.MaxTotalPoints {
		return nil
	}
	if err := s.campaignRepo.UpdateStatus(campaignID, constants.CampaignStatusPaused, nil); err != nil {
		return err
	}
	logger.Warnw("活动全局预算耗尽，自动暂停",
		"campaign_id", campaignID,
		"name", campaign.Name,
		"max_total_points", campaign.MaxTotalPoints,
	)
	return nil
}

// campaignDatePassed 判断活动结束日期是否已过（按活动时区的日历日）
func campaignDatePassed(campaign *models.Campaign, now time.Time) bool {
	if campaign.EndDate == "" {
		return false
	}
	loc := campaignLocation(campaign)
	return now.In(loc).Format(campaignDateLayout) > campaign.EndDate
}
