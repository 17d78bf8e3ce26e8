package service

import (
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

func setupCampaignSchedulerTest(t *testing.T) (*CampaignScheduler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:campaign_scheduler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Campaign{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewCampaignScheduler(repository.NewCampaignRepository(db)), db
}

func TestSweepExpiredEndsPastCampaigns(t *testing.T) {
	svc, db := setupCampaignSchedulerTest(t)
	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

	expired := createRawBoostCampaign(t, db, models.Campaign{
		Name:       "档期已过",
		EndDate:    "2026-03-10",
		Multiplier: decimal.NewFromFloat(2.0),
	})
	expiredPaused := createRawBoostCampaign(t, db, models.Campaign{
		Name:       "暂停且已过",
		Status:     constants.CampaignStatusPaused,
		EndDate:    "2026-03-15",
		Multiplier: decimal.NewFromFloat(2.0),
	})
	running := createRawBoostCampaign(t, db, models.Campaign{
		Name:       "档期内",
		EndDate:    "2026-03-18",
		Multiplier: decimal.NewFromFloat(2.0),
	})
	draft := createRawBoostCampaign(t, db, models.Campaign{
		Name:       "草稿不动",
		Status:     constants.CampaignStatusDraft,
		EndDate:    "2026-03-01",
		Multiplier: decimal.NewFromFloat(2.0),
	})

	ended, err := svc.SweepExpired(now)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if ended != 2 {
		t.Fatalf("expected 2 ended, got %d", ended)
	}

	assertStatus := func(id uint, want string) {
		t.Helper()
		var campaign models.Campaign
		if err := db.First(&campaign, id).Error; err != nil {
			t.Fatalf("reload campaign failed: %v", err)
		}
		if campaign.Status != want {
			t.Fatalf("campaign %d: expected %s, got %s", id, want, campaign.Status)
		}
	}
	assertStatus(expired.ID, constants.CampaignStatusEnded)
	assertStatus(expiredPaused.ID, constants.CampaignStatusEnded)
	// 结束日当天仍在档期内
	assertStatus(running.ID, constants.CampaignStatusActive)
	assertStatus(draft.ID, constants.CampaignStatusDraft)
}

func TestSweepExpiredUsesCampaignTimezone(t *testing.T) {
	svc, db := setupCampaignSchedulerTest(t)
	// UTC 2026-03-18 20:00 在 IST 已是 3 月 19 日凌晨
	now := time.Date(2026, 3, 18, 20, 0, 0, 0, time.UTC)

	ist := createRawBoostCampaign(t, db, models.Campaign{
		Name:       "IST档期",
		EndDate:    "2026-03-18",
		Timezone:   "Asia/Kolkata",
		Multiplier: decimal.NewFromFloat(2.0),
	})
	utc := createRawBoostCampaign(t, db, models.Campaign{
		Name:       "UTC档期",
		EndDate:    "2026-03-18",
		Multiplier: decimal.NewFromFloat(2.0),
	})

	ended, err := svc.SweepExpired(now)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if ended != 1 {
		t.Fatalf("expected 1 ended, got %d", ended)
	}

	var istStored models.Campaign
	if err := db.First(&istStored, ist.ID).Error; err != nil {
		t.Fatalf("reload campaign failed: %v", err)
	}
	if istStored.Status != constants.CampaignStatusEnded {
		t.Fatalf("expected IST campaign ended, got %s", istStored.Status)
	}
	var utcStored models.Campaign
	if err := db.First(&utcStored, utc.ID).Error; err != nil {
		t.Fatalf("reload campaign failed: %v", err)
	}
	if utcStored.Status != constants.CampaignStatusActive {
		t.Fatalf("expected UTC campaign still active, got %s", utcStored.Status)
	}
}

func TestSweepExhaustedPausesOverBudgetCampaigns(t *testing.T) {
	svc, db := setupCampaignSchedulerTest(t)

	exhausted := createRawBoostCampaign(t, db, models.Campaign{
		Name:                 "预算耗尽",
		Multiplier:           decimal.NewFromFloat(2.0),
		GlobalLimitEnabled:   true,
		MaxTotalPoints:       1000,
		CurrentPointsAwarded: 1000,
	})
	withHeadroom := createRawBoostCampaign(t, db, models.Campaign{
		Name:                 "仍有余量",
		Multiplier:           decimal.NewFromFloat(2.0),
		GlobalLimitEnabled:   true,
		MaxTotalPoints:       1000,
		CurrentPointsAwarded: 400,
	})
	unlimited := createRawBoostCampaign(t, db, models.Campaign{
		Name:       "不限预算",
		Multiplier: decimal.NewFromFloat(2.0),
	})

	paused, err := svc.SweepExhausted()
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if paused != 1 {
		t.Fatalf("expected 1 paused, got %d", paused)
	}

	var exhaustedStored models.Campaign
	if err := db.First(&exhaustedStored, exhausted.ID).Error; err != nil {
		t.Fatalf("reload campaign failed: %v", err)
	}
	if exhaustedStored.Status != constants.CampaignStatusPaused {
		t.Fatalf("expected exhausted campaign paused, got %s", exhaustedStored.Status)
	}
	for _, id := range []uint{withHeadroom.ID, unlimited.ID} {
		var stored models.Campaign
		if err := db.First(&stored, id).Error; err != nil {
			t.Fatalf("reload campaign failed: %v", err)
		}
		if stored.Status != constants.CampaignStatusActive {
			t.Fatalf("campaign %d: expected active, got %s", id, stored.Status)
		}
	}
}

func TestPauseExhaustedIdempotent(t *testing.T) {
	svc, db := setupCampaignSchedulerTest(t)

	campaign := createRawBoostCampaign(t, db, models.Campaign{
		Name:                 "预算耗尽",
		Multiplier:           decimal.NewFromFloat(2.0),
		GlobalLimitEnabled:   true,
		MaxTotalPoints:       500,
		CurrentPointsAwarded: 500,
	})

	if err := svc.PauseExhausted(campaign.ID); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	// 已暂停后重复调用无副作用
	if err := svc.PauseExhausted(campaign.ID); err != nil {
		t.Fatalf("repeat pause failed: %v", err)
	}

	var refreshed models.Campaign
	if err := db.First(&refreshed, campaign.ID).Error; err != nil {
		t.Fatalf("reload campaign failed: %v", err)
	}
	if refreshed.Status != constants.CampaignStatusPaused {
		t.Fatalf("expected paused, got %s", refreshed.Status)
	}

	// 预算未耗尽的活动不受影响
	healthy := createRawBoostCampaign(t, db, models.Campaign{
		Name:               "余量充足",
		Multiplier:         decimal.NewFromFloat(2.0),
		GlobalLimitEnabled: true,
		MaxTotalPoints:     500,
	})
	if err := svc.PauseExhausted(healthy.ID); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	var healthyStored models.Campaign
	if err := db.First(&healthyStored, healthy.ID).Error; err != nil {
		t.Fatalf("reload campaign failed: %v", err)
	}
	if healthyStored.Status != constants.CampaignStatusActive {
		t.Fatalf("expected active, got %s", healthyStored.Status)
	}
}
