package service

import (
	"strings"
	"time"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/logger"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CampaignAdminService 活动管理服务
type CampaignAdminService struct {
	campaignRepo repository.CampaignRepository
	usageRepo    repository.CampaignUsageRepository
}

// NewCampaignAdminService 创建活动管理服务
func NewCampaignAdminService(campaignRepo repository.CampaignRepository, usageRepo repository.CampaignUsageRepository) *CampaignAdminService {
	return &CampaignAdminService{
		campaignRepo: campaignRepo,
		usageRepo:    usageRepo,
	}
}

// GetCampaign 获取活动详情
func (s *CampaignAdminService) GetCampaign(id uint) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// ListCampaigns 分页查询活动
func (s *CampaignAdminService) ListCampaigns(filter repository.CampaignListFilter) ([]models.Campaign, int64, error) {
	return s.campaignRepo.List(filter)
}

// ListUsages 分页查询活动用量记录
func (s *CampaignAdminService) ListUsages(filter repository.CampaignUsageListFilter) ([]models.CampaignUsage, int64, error) {
	return s.usageRepo.List(filter)
}

// CreateCampaign 创建活动（初始为草稿）
func (s *CampaignAdminService) CreateCampaign(campaign *models.Campaign) error {
	if err := s.normalizeAndValidate(campaign); err != nil {
		return err
	}
	campaign.Status = constants.CampaignStatusDraft
	campaign.CurrentPointsAwarded = 0
	campaign.CurrentTotalUses = 0
	if err := s.campaignRepo.Create(campaign); err != nil {
		logger.Errorw("创建活动失败", "name", campaign.Name, "error", err)
		return ErrCampaignCreateFailed
	}
	return nil
}

// UpdateCampaign 更新活动配置（计数器字段不受影响）
func (s *CampaignAdminService) UpdateCampaign(campaign *models.Campaign) error {
	if campaign.ID == 0 {
		return ErrCampaignNotFound
	}
	existing, err := s.campaignRepo.GetByID(campaign.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCampaignNotFound
	}
	if err := s.normalizeAndValidate(campaign); err != nil {
		return err
	}
	// 状态与计数器只经由专用入口变更
	campaign.Status = existing.Status
	campaign.CurrentPointsAwarded = existing.CurrentPointsAwarded
	campaign.CurrentTotalUses = existing.CurrentTotalUses
	campaign.TotalPointsAwarded = existing.TotalPointsAwarded
	campaign.TotalOrders = existing.TotalOrders
	campaign.UniqueCustomers = existing.UniqueCustomers
	campaign.RevenueInfluenced = existing.RevenueInfluenced
	campaign.CreatedAt = existing.CreatedAt
	if err := s.campaignRepo.Update(campaign); err != nil {
		return ErrCampaignUpdateFailed
	}
	return nil
}

// Activate 启用活动（draft/paused → active）
func (s *CampaignAdminService) Activate(id uint) error {
	return s.transition(id, constants.CampaignStatusActive)
}

// Pause 暂停活动（active → paused）
func (s *CampaignAdminService) Pause(id uint) error {
	return s.transition(id, constants.CampaignStatusPaused)
}

// End 结束活动（active/paused → ended，终态）
func (s *CampaignAdminService) End(id uint) error {
	return s.transition(id, constants.CampaignStatusEnded)
}

// DeleteCampaign 软删除活动，用量与流水保留可追溯
func (s *CampaignAdminService) DeleteCampaign(id uint) error {
	campaign, err := s.campaignRepo.GetByID(id)
	if err != nil {
		return err
	}
	if campaign == nil {
		return ErrCampaignNotFound
	}
	return s.campaignRepo.SoftDelete(id)
}

// ResetCounters 重置活动的用量计数器（开启新一轮发放）
func (s *CampaignAdminService) ResetCounters(id uint) error {
	campaign, err := s.campaignRepo.GetByID(id)
	if err != nil {
		return err
	}
	if campaign == nil {
		return ErrCampaignNotFound
	}
	logger.Infow("重置活动计数器",
		"campaign_id", id,
		"points_awarded", campaign.CurrentPointsAwarded,
		"total_uses", campaign.CurrentTotalUses,
	)
	return s.campaignRepo.ResetCounters(id)
}

var campaignTransitions = map[string][]string{
	constants.CampaignStatusDraft:  {constants.CampaignStatusActive},
	constants.CampaignStatusActive: {constants.CampaignStatusPaused, constants.CampaignStatusEnded},
	constants.CampaignStatusPaused: {constants.CampaignStatusActive, constants.CampaignStatusEnded},
	constants.CampaignStatusEnded:  {},
}

func (s *CampaignAdminService) transition(id uint, target string) error {
	campaign, err := s.campaignRepo.GetByID(id)
	if err != nil {
		return err
	}
	if campaign == nil {
		return ErrCampaignNotFound
	}
	if campaign.Status == target {
		return nil
	}
	allowed := false
	for _, next := range campaignTransitions[campaign.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrCampaignStatusInvalid
	}
	if err := s.campaignRepo.UpdateStatus(id, target, nil); err != nil {
		return ErrCampaignUpdateFailed
	}
	logger.Infow("活动状态变更", "campaign_id", id, "from", campaign.Status, "to", target)
	return nil
}

// normalizeAndValidate 规整并校验活动配置
func (s *CampaignAdminService) normalizeAndValidate(campaign *models.Campaign) error {
	campaign.Name = strings.TrimSpace(campaign.Name)
	if campaign.Name == "" {
		return ErrCampaignNameRequired
	}

	if err := validateCampaignDates(campaign); err != nil {
		return err
	}

	if campaign.Timezone != "" {
		if _, err := time.LoadLocation(campaign.Timezone); err != nil {
			return ErrCampaignTimezoneBad
		}
	}
	for _, day := range campaign.DaysOfWeek {
		if day < 0 || day > 6 {
			return ErrCampaignDateInvalid
		}
	}
	if campaign.TimeWindowEnabled {
		if !validClockString(campaign.TimeWindowStart) || !validClockString(campaign.TimeWindowEnd) {
			return ErrCampaignTimeWindowBad
		}
		if campaign.TimeWindowStart == campaign.TimeWindowEnd {
			return ErrCampaignTimeWindowBad
		}
	}

	if err := validateBoostValue(campaign); err != nil {
		return err
	}

	if campaign.Priority == 0 {
		campaign.Priority = 5
	}
	if campaign.Priority < constants.StackingPriorityMin || campaign.Priority > constants.StackingPriorityMax {
		return ErrCampaignPriorityRange
	}

	switch campaign.StackingMode {
	case "":
		campaign.StackingMode = constants.StackingModeMultiplicative
	case constants.StackingModeMultiplicative, constants.StackingModeAdditive, constants.StackingModeHighestOnly:
	default:
		return ErrCampaignBoostInvalid
	}

	switch campaign.ResetPeriod {
	case "":
		campaign.ResetPeriod = constants.ResetPeriodNone
	case constants.ResetPeriodDaily, constants.ResetPeriodWeekly,
		constants.ResetPeriodCampaign, constants.ResetPeriodNone:
	default:
		return ErrCampaignBoostInvalid
	}

	if campaign.MaxPointsPerOrder < 0 || campaign.MaxPointsPerCustomer < 0 ||
		campaign.MaxTotalPoints < 0 || campaign.MaxUsesPerCustomer < 0 || campaign.MaxTotalUses < 0 {
		return ErrCampaignBoostInvalid
	}
	if campaign.GlobalLimitEnabled && campaign.MaxTotalPoints <= 0 {
		return ErrCampaignBoostInvalid
	}
	return nil
}

func validateCampaignDates(campaign *models.Campaign) error {
	start, err := time.Parse(campaignDateLayout, campaign.StartDate)
	if err != nil {
		return ErrCampaignDateInvalid
	}
	end, err := time.Parse(campaignDateLayout, campaign.EndDate)
	if err != nil {
		return ErrCampaignDateInvalid
	}
	if end.Before(start) {
		return ErrCampaignDateInvalid
	}
	return nil
}

// validateBoostValue 校验加成数值与类型匹配
func validateBoostValue(campaign *models.Campaign) error {
	switch campaign.BoostType {
	case constants.BoostTypeMultiplier:
		// 倍率不低于 0 即可保存，不产生加成的倍率由引擎自行忽略
		if campaign.Multiplier.IsNegative() {
			return ErrCampaignBoostInvalid
		}
	case constants.BoostTypeFixedExtra:
		if campaign.FixedPoints <= 0 {
			return ErrCampaignBoostInvalid
		}
	case constants.BoostTypeReplaceBase:
		if campaign.ReplacementRate.LessThanOrEqual(decimal.Zero) {
			return ErrCampaignBoostInvalid
		}
	default:
		return ErrCampaignBoostInvalid
	}
	return nil
}
