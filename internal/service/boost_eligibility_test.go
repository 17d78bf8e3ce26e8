package service

import (
	"testing"
	"time"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/models"
)

func TestCampaignScheduleContainsDates(t *testing.T) {
	campaign := &models.Campaign{
		StartDate: "2026-03-01",
		EndDate:   "2026-03-31",
	}

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"开始前一日", time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC), false},
		{"首日凌晨", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"档期中段", time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), true},
		{"末日深夜", time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC), true},
		{"结束次日", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := campaignScheduleContains(campaign, tc.at); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestCampaignScheduleContainsTimezone(t *testing.T) {
	campaign := &models.Campaign{
		StartDate: "2026-03-01",
		EndDate:   "2026-03-31",
		Timezone:  "Asia/Kolkata",
	}

	// UTC 2026-02-28 19:00 在 IST 为 2026-03-01 00:30，已入档期
	if !campaignScheduleContains(campaign, time.Date(2026, 2, 28, 19, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected IST calendar day to be in schedule")
	}
	// UTC 2026-03-31 19:00 在 IST 为 2026-04-01 00:30，已出档期
	if campaignScheduleContains(campaign, time.Date(2026, 3, 31, 19, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected IST calendar day to be out of schedule")
	}
}

func TestCampaignScheduleContainsDaysOfWeek(t *testing.T) {
	campaign := &models.Campaign{
		StartDate:  "2026-01-01",
		EndDate:    "2026-12-31",
		DaysOfWeek: models.IntList{0, 6},
	}

	saturday := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 3, 22, 12, 0, 0, 0, time.UTC)
	wednesday := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

	if !campaignScheduleContains(campaign, saturday) || !campaignScheduleContains(campaign, sunday) {
		t.Fatalf("expected weekend to match")
	}
	if campaignScheduleContains(campaign, wednesday) {
		t.Fatalf("expected weekday to be excluded")
	}
}

func TestCampaignScheduleContainsTimeWindow(t *testing.T) {
	campaign := &models.Campaign{
		StartDate:         "2026-01-01",
		EndDate:           "2026-12-31",
		TimeWindowEnabled: true,
		TimeWindowStart:   "14:00",
		TimeWindowEnd:     "16:00",
	}

	day := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 18, hour, minute, 0, 0, time.UTC)
	}
	if campaignScheduleContains(campaign, day(13, 59)) {
		t.Fatalf("expected before window to be excluded")
	}
	if !campaignScheduleContains(campaign, day(14, 0)) {
		t.Fatalf("expected window start to be included")
	}
	if !campaignScheduleContains(campaign, day(15, 30)) {
		t.Fatalf("expected mid window to be included")
	}
	// 窗口右端不含
	if campaignScheduleContains(campaign, day(16, 0)) {
		t.Fatalf("expected window end to be excluded")
	}
}

func TestCampaignScheduleContainsCrossMidnightWindow(t *testing.T) {
	campaign := &models.Campaign{
		StartDate:         "2026-01-01",
		EndDate:           "2026-12-31",
		TimeWindowEnabled: true,
		TimeWindowStart:   "22:00",
		TimeWindowEnd:     "02:00",
	}

	day := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 18, hour, minute, 0, 0, time.UTC)
	}
	if !campaignScheduleContains(campaign, day(23, 0)) {
		t.Fatalf("expected late night to be included")
	}
	if !campaignScheduleContains(campaign, day(1, 30)) {
		t.Fatalf("expected early morning to be included")
	}
	if campaignScheduleContains(campaign, day(12, 0)) {
		t.Fatalf("expected midday to be excluded")
	}
	if campaignScheduleContains(campaign, day(2, 0)) {
		t.Fatalf("expected window end to be excluded")
	}
}

func TestCampaignScheduleContainsInvalidWindow(t *testing.T) {
	campaign := &models.Campaign{
		StartDate:         "2026-01-01",
		EndDate:           "2026-12-31",
		TimeWindowEnabled: true,
		TimeWindowStart:   "9:00",
		TimeWindowEnd:     "17:00",
	}
	// 非法时刻串按不生效处理
	if campaignScheduleContains(campaign, time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected invalid clock string to disable window")
	}
}

func TestCustomerCapWindowStartDaily(t *testing.T) {
	campaign := &models.Campaign{ResetPeriod: constants.ResetPeriodDaily}
	at := time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)

	start := customerCapWindowStart(campaign, at)
	if start == nil {
		t.Fatalf("expected daily window start")
	}
	want := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("expected %s, got %s", want, start)
	}
}

func TestCustomerCapWindowStartWeekly(t *testing.T) {
	campaign := &models.Campaign{ResetPeriod: constants.ResetPeriodWeekly}

	// 周三 → 回溯到周一
	wednesday := time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)
	start := customerCapWindowStart(campaign, wednesday)
	if start == nil {
		t.Fatalf("expected weekly window start")
	}
	monday := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	if !start.Equal(monday) {
		t.Fatalf("expected %s, got %s", monday, start)
	}

	// 周日属于同一周
	sunday := time.Date(2026, 3, 22, 10, 0, 0, 0, time.UTC)
	start = customerCapWindowStart(campaign, sunday)
	if start == nil || !start.Equal(monday) {
		t.Fatalf("expected sunday to map to %s, got %v", monday, start)
	}

	// 周一当日从零点起算
	mondayNoon := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)
	start = customerCapWindowStart(campaign, mondayNoon)
	if start == nil || !start.Equal(monday) {
		t.Fatalf("expected monday to map to itself, got %v", start)
	}
}

func TestCustomerCapWindowStartLifetime(t *testing.T) {
	at := time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)
	for _, period := range []string{constants.ResetPeriodCampaign, constants.ResetPeriodNone, ""} {
		campaign := &models.Campaign{ResetPeriod: period}
		if start := customerCapWindowStart(campaign, at); start != nil {
			t.Fatalf("expected lifetime window for %q, got %v", period, start)
		}
	}
}

func TestCampaignTargetsMatchProductsAndCategories(t *testing.T) {
	ctx := OrderContext{
		Items: []models.OrderItem{
			{ProductID: 11, CategoryID: 2},
			{ProductID: 12, CategoryID: 3},
		},
	}

	byProduct := &models.Campaign{ProductsEnabled: true, ProductIDs: models.IDList{12}}
	if !campaignTargetsMatch(byProduct, ctx, nil) {
		t.Fatalf("expected product match")
	}
	byProduct.ProductIDs = models.IDList{99}
	if campaignTargetsMatch(byProduct, ctx, nil) {
		t.Fatalf("expected product mismatch")
	}

	byCategory := &models.Campaign{CategoriesEnabled: true, CategoryIDs: models.IDList{3}}
	if !campaignTargetsMatch(byCategory, ctx, nil) {
		t.Fatalf("expected category match")
	}
	byCategory.CategoryIDs = models.IDList{}
	if campaignTargetsMatch(byCategory, ctx, nil) {
		t.Fatalf("expected enabled empty set to match nothing")
	}
}

func TestCampaignTargetsMatchSpecificCustomers(t *testing.T) {
	campaign := &models.Campaign{
		CustomerTagsEnabled: true,
		SpecificCustomerIDs: models.IDList{42},
		TagIDs:              models.IDList{7},
	}

	// 指定客户与标签命中其一即可
	if !campaignTargetsMatch(campaign, OrderContext{UserID: 42}, nil) {
		t.Fatalf("expected specific customer match")
	}
	if !campaignTargetsMatch(campaign, OrderContext{UserID: 43}, []uint{7}) {
		t.Fatalf("expected tag match")
	}
	if campaignTargetsMatch(campaign, OrderContext{UserID: 43}, []uint{8}) {
		t.Fatalf("expected no match")
	}
}
