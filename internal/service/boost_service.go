package service

import (
	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"

	"github.com/shopspring/decimal"
)

// BoostService 积分加成引擎
//
// ResolveBoost 为只读计算，不修改任何计数器；
// 计算结果需通过 RecordUsage 落账后方可对外生效。
type BoostService struct {
	campaignRepo repository.CampaignRepository
	usageRepo    repository.CampaignUsageRepository
	tagRepo      repository.TagRepository
	campaigns    ActiveCampaignSource

	recordMaxRetries  int
	onBudgetExhausted func(campaignID uint)
}

// ActiveCampaignSource 进行中活动的来源（缓存或仓储）
type ActiveCampaignSource interface {
	ActiveCampaigns() ([]models.Campaign, error)
}

// NewBoostService 创建加成引擎
func NewBoostService(
	campaignRepo repository.CampaignRepository,
	usageRepo repository.CampaignUsageRepository,
	tagRepo repository.TagRepository,
) *BoostService {
	return &BoostService{
		campaignRepo: campaignRepo,
		usageRepo:    usageRepo,
		tagRepo:      tagRepo,
	}
}

// SetCampaignSource 设置活动快照来源（通常为缓存），nil 时直连仓储
func (s *BoostService) SetCampaignSource(source ActiveCampaignSource) {
	s.campaigns = source
}

// ResolveBoost 计算一笔订单的加成积分
//
// 流程：资格筛选 → 互斥判定 → 按叠加模式合并 → 逐活动封顶。
// 返回的 Resolution 中 Applied 各项积分之和等于 BoostPoints。
func (s *BoostService) ResolveBoost(ctx OrderContext) (*Resolution, error) {
	if ctx.BasePoints < 0 {
		return nil, ErrLoyaltyInvalidPoints
	}
	empty := &Resolution{
		BasePoints:  ctx.BasePoints,
		FinalPoints: ctx.BasePoints,
		Applied:     []AppliedBoost{},
	}

	candidates, err := s.activeCampaigns()
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return empty, nil
	}

	userTagIDs, err := s.userTagIDs(ctx.UserID, candidates)
	if err != nil {
		return nil, err
	}

	eligible := make([]models.Campaign, 0, len(candidates))
	for i := range candidates {
		ok, err := s.isEligible(&candidates[i], ctx, userTagIDs)
		if err != nil {
			return nil, err
		}
		if ok {
			eligible = append(eligible, candidates[i])
		}
	}
	if len(eligible) == 0 {
		return empty, nil
	}

	// 存在不可叠加的活动时，其中优先级最高者独占本单
	var applied []models.Campaign
	exclusive := false
	for i := range eligible {
		if !eligible[i].AllowStacking {
			applied = []models.Campaign{eligible[i]}
			exclusive = true
			break
		}
	}
	if !exclusive {
		applied = eligible
	}

	mode := applied[0].StackingMode
	contributions := s.combine(ctx, applied, mode)

	result := &Resolution{
		BasePoints:   ctx.BasePoints,
		StackingMode: mode,
		Exclusive:    exclusive,
		Applied:      []AppliedBoost{},
	}
	for _, c := range contributions {
		points, err := s.clipContribution(c.campaign, ctx, c.amount)
		if err != nil {
			return nil, err
		}
		if points <= 0 {
			continue
		}
		result.Applied = append(result.Applied, AppliedBoost{
			CampaignID:         c.campaign.ID,
			Name:               c.campaign.Name,
			BoostType:          c.campaign.BoostType,
			Priority:           c.campaign.Priority,
			Points:             points,
			BadgeText:          c.campaign.BadgeText,
			DisplayToCustomers: c.campaign.DisplayToCustomers,
		})
		result.BoostPoints += points
	}
	result.FinalPoints = result.BasePoints + result.BoostPoints
	return result, nil
}

func (s *BoostService) activeCampaigns() ([]models.Campaign, error) {
	if s.campaigns != nil {
		return s.campaigns.ActiveCampaigns()
	}
	return s.campaignRepo.ListActive()
}

func (s *BoostService) userTagIDs(userID uint, candidates []models.Campaign) ([]uint, error) {
	if userID == 0 || s.tagRepo == nil {
		return nil, nil
	}
	needed := false
	for i := range candidates {
		if candidates[i].CustomerTagsEnabled {
			needed = true
			break
		}
	}
	if !needed {
		return nil, nil
	}
	return s.tagRepo.TagIDsByUser(userID)
}

// isEligible 判断活动对当前订单是否生效：
// 档期、目标条件、次数限额与全局预算任一不满足即排除。
func (s *BoostService) isEligible(campaign *models.Campaign, ctx OrderContext, userTagIDs []uint) (bool, error) {
	if !campaignScheduleContains(campaign, ctx.at()) {
		return false, nil
	}
	if !campaignTargetsMatch(campaign, ctx, userTagIDs) {
		return false, nil
	}
	if campaign.MaxTotalUses > 0 && campaign.CurrentTotalUses >= campaign.MaxTotalUses {
		return false, nil
	}
	if campaign.GlobalLimitEnabled && campaign.MaxTotalPoints > 0 &&
		campaign.CurrentPointsAwarded >= campaign.MaxTotalPoints {
		return false, nil
	}
	if campaign.MaxUsesPerCustomer > 0 && ctx.UserID != 0 {
		count, err := s.usageRepo.CountByCampaignAndUser(campaign.ID, ctx.UserID)
		if err != nil {
			return false, err
		}
		if count >= int64(campaign.MaxUsesPerCustomer) {
			return false, nil
		}
	}
	return true, nil
}

type contribution struct {
	campaign models.Campaign
	amount   decimal.Decimal
}

// combine 按叠加模式合并各活动的加成贡献。
//
// multiplicative：倍率活动按优先级顺序连乘，贡献取逐步增量；
// additive：各倍率活动独立按 base×(m-1) 计；
// highest_only：仅保留单独收益最高的一个活动；
// fixed_extra 在前两种模式下直接累加。合并顺序固定：先倍率、
// 后固定加成，最后由优先级最高的 replace_base 替换整个合并结果。
func (s *BoostService) combine(ctx OrderContext, applied []models.Campaign, mode string) []contribution {
	base := decimal.NewFromInt(ctx.BasePoints)

	if mode == constants.StackingModeHighestOnly && len(applied) > 1 {
		return s.pickHighest(ctx, applied, base)
	}

	var multipliers, fixed []contribution
	var replace *contribution
	running := base

	for _, campaign := range applied {
		switch campaign.BoostType {
		case constants.BoostTypeMultiplier:
			if campaign.Multiplier.LessThanOrEqual(decimal.NewFromInt(1)) {
				continue
			}
			var amount decimal.Decimal
			if mode == constants.StackingModeAdditive {
				amount = base.Mul(campaign.Multiplier.Sub(decimal.NewFromInt(1)))
			} else {
				next := running.Mul(campaign.Multiplier)
				amount = next.Sub(running)
				running = next
			}
			multipliers = append(multipliers, contribution{campaign: campaign, amount: amount})
		case constants.BoostTypeFixedExtra:
			if campaign.FixedPoints <= 0 {
				continue
			}
			fixed = append(fixed, contribution{
				campaign: campaign,
				amount:   decimal.NewFromInt(campaign.FixedPoints),
			})
		case constants.BoostTypeReplaceBase:
			if replace != nil {
				continue
			}
			amount := ctx.OrderValue.Decimal.Mul(campaign.ReplacementRate).Sub(base)
			replace = &contribution{campaign: campaign, amount: amount}
		}
	}

	if replace != nil {
		return []contribution{*replace}
	}
	result := make([]contribution, 0, len(multipliers)+len(fixed))
	result = append(result, multipliers...)
	result = append(result, fixed...)
	return result
}

// pickHighest 计算各活动的单独收益并保留最大者，同分取先处理者
func (s *BoostService) pickHighest(ctx OrderContext, applied []models.Campaign, base decimal.Decimal) []contribution {
	var best *contribution
	for _, campaign := range applied {
		var amount decimal.Decimal
		switch campaign.BoostType {
		case constants.BoostTypeMultiplier:
			amount = base.Mul(campaign.Multiplier.Sub(decimal.NewFromInt(1)))
		case constants.BoostTypeFixedExtra:
			amount = decimal.NewFromInt(campaign.FixedPoints)
		case constants.BoostTypeReplaceBase:
			amount = ctx.OrderValue.Decimal.Mul(campaign.ReplacementRate).Sub(base)
		default:
			continue
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if best == nil || amount.GreaterThan(best.amount) {
			c := contribution{campaign: campaign, amount: amount}
			best = &c
		}
	}
	if best == nil {
		return nil
	}
	return []contribution{*best}
}

// clipContribution 对单个活动的贡献依次套用单笔、每客户、全局三类上限，
// 封顶后四舍五入取整。
func (s *BoostService) clipContribution(campaign models.Campaign, ctx OrderContext, amount decimal.Decimal) (int64, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return 0, nil
	}
	if campaign.MaxPointsPerOrder > 0 {
		amount = decimal.Min(amount, decimal.NewFromInt(campaign.MaxPointsPerOrder))
	}
	if campaign.MaxPointsPerCustomer > 0 && ctx.UserID != 0 {
		since := customerCapWindowStart(&campaign, ctx.at())
		used, err := s.usageRepo.SumPointsByCampaignAndUserSince(campaign.ID, ctx.UserID, since)
		if err != nil {
			return 0, err
		}
		remaining := campaign.MaxPointsPerCustomer - used
		if remaining <= 0 {
			return 0, nil
		}
		amount = decimal.Min(amount, decimal.NewFromInt(remaining))
	}
	if campaign.GlobalLimitEnabled && campaign.MaxTotalPoints > 0 {
		remaining := campaign.MaxTotalPoints - campaign.CurrentPointsAwarded
		if remaining <= 0 {
			return 0, nil
		}
		amount = decimal.Min(amount, decimal.NewFromInt(remaining))
	}
	return amount.Round(0).IntPart(), nil
}
