package service

import (
	"time"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/models"

	"github.com/shopspring/decimal"
)

const (
	campaignDateLayout = "2006-01-02"
	campaignTimeLayout = "15:04"
)

// campaignLocation 解析活动时区，空值或非法值回退 UTC
func campaignLocation(campaign *models.Campaign) *time.Location {
	if campaign.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(campaign.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// campaignScheduleContains 判断时刻是否落在活动档期内。
// 日期按活动时区的日历日比较，首尾日均含；
// 时段窗口为 [start, end)，跨零点窗口（如 22:00-02:00）按两段处理。
func campaignScheduleContains(campaign *models.Campaign, at time.Time) bool {
	loc := campaignLocation(campaign)
	local := at.In(loc)
	day := local.Format(campaignDateLayout)

	if campaign.StartDate != "" && day < campaign.StartDate {
		return false
	}
	if campaign.EndDate != "" && day > campaign.EndDate {
		return false
	}

	if len(campaign.DaysOfWeek) > 0 {
		// time.Weekday 与存储约定一致：0=周日
		if !campaign.DaysOfWeek.Contains(int(local.Weekday())) {
			return false
		}
	}

	if campaign.TimeWindowEnabled {
		start, end := campaign.TimeWindowStart, campaign.TimeWindowEnd
		if !validClockString(start) || !validClockString(end) {
			return false
		}
		clock := local.Format(campaignTimeLayout)
		if start <= end {
			if clock < start || clock >= end {
				return false
			}
		} else {
			if clock < start && clock >= end {
				return false
			}
		}
	}
	return true
}

func validClockString(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	_, err := time.Parse(campaignTimeLayout, s)
	return err == nil
}

// campaignTargetsMatch 判断订单是否命中活动的目标条件。
// 各条件组独立启用；启用但集合为空的组不匹配任何订单。
func campaignTargetsMatch(campaign *models.Campaign, ctx OrderContext, userTagIDs []uint) bool {
	if campaign.ProductsEnabled {
		if !anyItemProductIn(ctx.Items, campaign.ProductIDs) {
			return false
		}
	}
	if campaign.CategoriesEnabled {
		if !anyItemCategoryIn(ctx.Items, campaign.CategoryIDs) {
			return false
		}
	}
	if campaign.ChannelsEnabled {
		if !containsString(campaign.ChannelList, ctx.Channel) {
			return false
		}
	}
	if campaign.CustomerTagsEnabled {
		if !customerMatches(campaign, ctx.UserID, userTagIDs) {
			return false
		}
	}
	if campaign.OrderCriteriaEnabled {
		value := ctx.OrderValue.Decimal
		if value.LessThan(campaign.MinOrderValue.Decimal) {
			return false
		}
		if campaign.MaxOrderValue.Decimal.GreaterThan(decimal.Zero) &&
			value.GreaterThan(campaign.MaxOrderValue.Decimal) {
			return false
		}
	}
	return true
}

func anyItemProductIn(items []models.OrderItem, ids models.IDList) bool {
	for _, item := range items {
		if ids.Contains(item.ProductID) {
			return true
		}
	}
	return false
}

func anyItemCategoryIn(items []models.OrderItem, ids models.IDList) bool {
	for _, item := range items {
		if ids.Contains(item.CategoryID) {
			return true
		}
	}
	return false
}

func containsString(list models.StringArray, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// customerMatches 指定客户集合与标签集合二者命中其一即可
func customerMatches(campaign *models.Campaign, userID uint, userTagIDs []uint) bool {
	if campaign.SpecificCustomerIDs.Contains(userID) {
		return true
	}
	for _, tagID := range userTagIDs {
		if campaign.TagIDs.Contains(tagID) {
			return true
		}
	}
	return false
}

// customerCapWindowStart 计算每客户积分上限的窗口起点；
// 返回 nil 表示全程累计（campaign/none）。
func customerCapWindowStart(campaign *models.Campaign, at time.Time) *time.Time {
	loc := campaignLocation(campaign)
	local := at.In(loc)
	switch campaign.ResetPeriod {
	case constants.ResetPeriodDaily:
		start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		return &start
	case constants.ResetPeriodWeekly:
		// 周一 00:00 起算
		offset := (int(local.Weekday()) + 6) % 7
		day := local.AddDate(0, 0, -offset)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		return &start
	default:
		return nil
	}
}
