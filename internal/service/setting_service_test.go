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

func setupSettingServiceTest(t *testing.T) (*SettingService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:setting_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewSettingService(repository.NewSettingRepository(db)), db
}

func TestSettingLoyaltyDefaults(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)

	settings, err := svc.GetLoyaltySettings()
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if !settings.PointsPerDollar.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected points per dollar: %s", settings.PointsPerDollar)
	}
	if settings.RedemptionRate != 1000 || settings.MinRedemptionPoints != 500 {
		t.Fatalf("unexpected defaults: %+v", settings)
	}
	if !settings.RewardValuePerRate.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected reward value: %s", settings.RewardValuePerRate.String())
	}
}

func TestSettingLoyaltyRoundTrip(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)

	if err := svc.UpdateLoyaltySettings(LoyaltySettings{
		PointsPerDollar:     decimal.NewFromFloat(2.5),
		RedemptionRate:      500,
		MinRedemptionPoints: 200,
		RewardValuePerRate:  models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	settings, err := svc.GetLoyaltySettings()
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if !settings.PointsPerDollar.Equal(decimal.NewFromFloat(2.5)) {
		t.Fatalf("unexpected points per dollar: %s", settings.PointsPerDollar)
	}
	if settings.RedemptionRate != 500 || settings.MinRedemptionPoints != 200 {
		t.Fatalf("unexpected settings: %+v", settings)
	}
	if !settings.RewardValuePerRate.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected reward value: %s", settings.RewardValuePerRate.String())
	}
}

func TestSettingLoyaltyUpdateValidation(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)

	err := svc.UpdateLoyaltySettings(LoyaltySettings{
		PointsPerDollar:     decimal.Zero,
		RedemptionRate:      1000,
		MinRedemptionPoints: 500,
		RewardValuePerRate:  models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
	})
	if !errors.Is(err, ErrLoyaltyInvalidPoints) {
		t.Fatalf("expected invalid settings rejected, got: %v", err)
	}
}

func TestSettingLoyaltyIgnoresBadStoredValues(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)

	// 存量脏数据按默认值兜底
	if err := svc.Update(constants.SettingKeyLoyalty, map[string]interface{}{
		"points_per_dollar":     "not-a-number",
		"redemption_rate":       -5,
		"min_redemption_points": "250",
	}); err != nil {
		t.Fatalf("seed setting failed: %v", err)
	}

	settings, err := svc.GetLoyaltySettings()
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if !settings.PointsPerDollar.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected default points per dollar, got %s", settings.PointsPerDollar)
	}
	if settings.RedemptionRate != 1000 {
		t.Fatalf("expected default redemption rate, got %d", settings.RedemptionRate)
	}
	if settings.MinRedemptionPoints != 250 {
		t.Fatalf("expected parsed min redemption, got %d", settings.MinRedemptionPoints)
	}
}

func TestSettingUpsert(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)

	if err := svc.Update("site_config", map[string]interface{}{"name": "Loyalty"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := svc.Update("site_config", map[string]interface{}{"name": "Loyalty Next"}); err != nil {
		t.Fatalf("repeat update failed: %v", err)
	}

	value, err := svc.GetByKey("site_config")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value["name"] != "Loyalty Next" {
		t.Fatalf("unexpected value: %+v", value)
	}

	missing, err := svc.GetByKey("absent")
	if err != nil {
		t.Fatalf("get missing failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing key, got %+v", missing)
	}
}
