package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCampaignAdminTest(t *testing.T) (*CampaignAdminService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:campaign_admin_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Campaign{}, &models.CampaignUsage{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	campaignRepo := repository.NewCampaignRepository(db)
	usageRepo := repository.NewCampaignUsageRepository(db)
	return NewCampaignAdminService(campaignRepo, usageRepo), db
}

func validAdminCampaign() *models.Campaign {
	return &models.Campaign{
		Name:       "双倍积分",
		StartDate:  "2026-03-01",
		EndDate:    "2026-03-31",
		BoostType:  constants.BoostTypeMultiplier,
		Multiplier: decimal.NewFromFloat(2.0),
	}
}

func TestCampaignCreateForcesDraft(t *testing.T) {
	svc, _ := setupCampaignAdminTest(t)

	campaign := validAdminCampaign()
	campaign.Status = constants.CampaignStatusActive
	campaign.CurrentPointsAwarded = 500
	campaign.CurrentTotalUses = 3
	if err := svc.CreateCampaign(campaign); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	created, err := svc.GetCampaign(campaign.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if created.Status != constants.CampaignStatusDraft {
		t.Fatalf("expected draft, got %s", created.Status)
	}
	if created.CurrentPointsAwarded != 0 || created.CurrentTotalUses != 0 {
		t.Fatalf("expected zeroed counters, got %+v", created)
	}
	if created.Priority != 5 || created.StackingMode != constants.StackingModeMultiplicative {
		t.Fatalf("expected normalized defaults, got priority=%d mode=%s", created.Priority, created.StackingMode)
	}
}

func TestCampaignCreatePersistsExclusiveFlag(t *testing.T) {
	svc, db := setupCampaignAdminTest(t)

	campaign := validAdminCampaign()
	campaign.AllowStacking = false
	if err := svc.CreateCampaign(campaign); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var stored models.Campaign
	if err := db.First(&stored, campaign.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.AllowStacking {
		t.Fatalf("expected exclusive campaign to stay non-stackable after reload")
	}

	stackable := validAdminCampaign()
	stackable.Name = "可叠加双倍"
	stackable.AllowStacking = true
	if err := svc.CreateCampaign(stackable); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var storedStackable models.Campaign
	if err := db.First(&storedStackable, stackable.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !storedStackable.AllowStacking {
		t.Fatalf("expected stackable campaign to stay stackable after reload")
	}
}

func TestCampaignCreateValidation(t *testing.T) {
	svc, _ := setupCampaignAdminTest(t)

	cases := []struct {
		name    string
		mutate  func(c *models.Campaign)
		wantErr error
	}{
		{"空名称", func(c *models.Campaign) { c.Name = "  " }, ErrCampaignNameRequired},
		{"非法日期", func(c *models.Campaign) { c.StartDate = "03/01/2026" }, ErrCampaignDateInvalid},
		{"结束早于开始", func(c *models.Campaign) { c.EndDate = "2026-02-01" }, ErrCampaignDateInvalid},
		{"非法时区", func(c *models.Campaign) { c.Timezone = "Mars/Olympus" }, ErrCampaignTimezoneBad},
		{"非法星期", func(c *models.Campaign) { c.DaysOfWeek = models.IntList{7} }, ErrCampaignDateInvalid},
		{"负倍率", func(c *models.Campaign) { c.Multiplier = decimal.NewFromInt(-1) }, ErrCampaignBoostInvalid},
		{"未知加成类型", func(c *models.Campaign) { c.BoostType = "bonus" }, ErrCampaignBoostInvalid},
		{"优先级越界", func(c *models.Campaign) { c.Priority = 11 }, ErrCampaignPriorityRange},
		{"未知叠加模式", func(c *models.Campaign) { c.StackingMode = "max" }, ErrCampaignBoostInvalid},
		{"未知重置周期", func(c *models.Campaign) { c.ResetPeriod = "monthly" }, ErrCampaignBoostInvalid},
		{"负上限", func(c *models.Campaign) { c.MaxPointsPerOrder = -1 }, ErrCampaignBoostInvalid},
		{"全局预算缺失", func(c *models.Campaign) { c.GlobalLimitEnabled = true }, ErrCampaignBoostInvalid},
		{
			"时段起止相同",
			func(c *models.Campaign) {
				c.TimeWindowEnabled = true
				c.TimeWindowStart = "14:00"
				c.TimeWindowEnd = "14:00"
			},
			ErrCampaignTimeWindowBad,
		},
		{
			"固定积分为零",
			func(c *models.Campaign) {
				c.BoostType = constants.BoostTypeFixedExtra
				c.FixedPoints = 0
			},
			ErrCampaignBoostInvalid,
		},
		{
			"替换率为零",
			func(c *models.Campaign) {
				c.BoostType = constants.BoostTypeReplaceBase
				c.ReplacementRate = decimal.Zero
			},
			ErrCampaignBoostInvalid,
		},
	}

	for _, tc := range cases {
		campaign := validAdminCampaign()
		tc.mutate(campaign)
		if err := svc.CreateCampaign(campaign); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestCampaignCreateAllowsLowMultiplier(t *testing.T) {
	svc, _ := setupCampaignAdminTest(t)

	// 不产生加成的倍率也允许保存，由引擎在计算时忽略
	for i, multiplier := range []decimal.Decimal{decimal.NewFromFloat(0.5), decimal.NewFromInt(1)} {
		campaign := validAdminCampaign()
		campaign.Name = fmt.Sprintf("低倍率-%d", i)
		campaign.Multiplier = multiplier
		if err := svc.CreateCampaign(campaign); err != nil {
			t.Fatalf("multiplier %s: create failed: %v", multiplier, err)
		}
	}
}

func TestCampaignStatusTransitions(t *testing.T) {
	svc, _ := setupCampaignAdminTest(t)

	campaign := validAdminCampaign()
	if err := svc.CreateCampaign(campaign); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := campaign.ID

	// draft 不能直接暂停或结束
	if err := svc.Pause(id); !errors.Is(err, ErrCampaignStatusInvalid) {
		t.Fatalf("expected invalid transition, got: %v", err)
	}
	if err := svc.End(id); !errors.Is(err, ErrCampaignStatusInvalid) {
		t.Fatalf("expected invalid transition, got: %v", err)
	}

	if err := svc.Activate(id); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if err := svc.Pause(id); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if err := svc.Activate(id); err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if err := svc.End(id); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	// ended 为终态
	if err := svc.Activate(id); !errors.Is(err, ErrCampaignStatusInvalid) {
		t.Fatalf("expected terminal state, got: %v", err)
	}
	// 同状态转换幂等
	if err := svc.End(id); err != nil {
		t.Fatalf("expected idempotent end, got: %v", err)
	}
}

func TestCampaignUpdatePreservesCountersAndStatus(t *testing.T) {
	svc, db := setupCampaignAdminTest(t)

	campaign := validAdminCampaign()
	if err := svc.CreateCampaign(campaign); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Activate(campaign.ID); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if err := db.Model(&models.Campaign{}).Where("id = ?", campaign.ID).Updates(map[string]interface{}{
		"current_points_awarded": 700,
		"current_total_uses":     4,
		"total_points_awarded":   700,
	}).Error; err != nil {
		t.Fatalf("seed counters failed: %v", err)
	}

	update := validAdminCampaign()
	update.ID = campaign.ID
	update.Name = "三倍积分"
	update.Multiplier = decimal.NewFromFloat(3.0)
	update.Status = constants.CampaignStatusDraft
	if err := svc.UpdateCampaign(update); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	updated, err := svc.GetCampaign(campaign.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.Name != "三倍积分" || !updated.Multiplier.Equal(decimal.NewFromFloat(3.0)) {
		t.Fatalf("expected config updated, got %+v", updated)
	}
	if updated.Status != constants.CampaignStatusActive {
		t.Fatalf("expected status preserved, got %s", updated.Status)
	}
	if updated.CurrentPointsAwarded != 700 || updated.CurrentTotalUses != 4 || updated.TotalPointsAwarded != 700 {
		t.Fatalf("expected counters preserved, got %+v", updated)
	}
}

func TestCampaignResetCounters(t *testing.T) {
	svc, db := setupCampaignAdminTest(t)

	campaign := validAdminCampaign()
	if err := svc.CreateCampaign(campaign); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := db.Model(&models.Campaign{}).Where("id = ?", campaign.ID).Updates(map[string]interface{}{
		"current_points_awarded": 900,
		"current_total_uses":     8,
		"total_points_awarded":   900,
	}).Error; err != nil {
		t.Fatalf("seed counters failed: %v", err)
	}

	if err := svc.ResetCounters(campaign.ID); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	updated, err := svc.GetCampaign(campaign.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.CurrentPointsAwarded != 0 || updated.CurrentTotalUses != 0 {
		t.Fatalf("expected counters reset, got %+v", updated)
	}
	// 历史统计保留
	if updated.TotalPointsAwarded != 900 {
		t.Fatalf("expected analytics preserved, got %d", updated.TotalPointsAwarded)
	}
}

func TestCampaignDeleteIsSoft(t *testing.T) {
	svc, db := setupCampaignAdminTest(t)

	campaign := validAdminCampaign()
	if err := svc.CreateCampaign(campaign); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.DeleteCampaign(campaign.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.GetCampaign(campaign.ID); !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("expected not found after delete, got: %v", err)
	}

	var count int64
	if err := db.Unscoped().Model(&models.Campaign{}).Where("id = ?", campaign.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected soft-deleted row retained, got %d", count)
	}
}
