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

type orderTestEnv struct {
	orderSvc   *OrderService
	boostSvc   *BoostService
	loyaltySvc *LoyaltyService
	db         *gorm.DB
}

func setupOrderServiceTest(t *testing.T) *orderTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.Campaign{},
		&models.CampaignUsage{},
		&models.Tag{},
		&models.CustomerTag{},
		&models.LoyaltyAccount{},
		&models.LoyaltyEntry{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	settingSvc := NewSettingService(repository.NewSettingRepository(db))
	loyaltySvc := NewLoyaltyService(repository.NewLoyaltyRepository(db), settingSvc)
	boostSvc := NewBoostService(
		repository.NewCampaignRepository(db),
		repository.NewCampaignUsageRepository(db),
		repository.NewTagRepository(db),
	)
	orderSvc := NewOrderService(repository.NewOrderRepository(db), boostSvc, loyaltySvc)
	return &orderTestEnv{
		orderSvc:   orderSvc,
		boostSvc:   boostSvc,
		loyaltySvc: loyaltySvc,
		db:         db,
	}
}

// createLiveCampaign 创建覆盖当前时刻的活动
func createLiveCampaign(t *testing.T, db *gorm.DB, campaign models.Campaign) models.Campaign {
	t.Helper()
	campaign.StartDate = "2020-01-01"
	campaign.EndDate = "2099-12-31"
	return createBoostCampaign(t, db, campaign)
}

func twoItemInput(userID uint) PlaceOrderInput {
	return PlaceOrderInput{
		UserID:  userID,
		Channel: constants.ChannelWebsite,
		Items: []models.OrderItem{
			{ProductID: 1, CategoryID: 1, Quantity: 2, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(30))},
			{ProductID: 2, CategoryID: 2, Quantity: 1, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(40))},
		},
	}
}

func TestPlaceOrderEarnsBasePoints(t *testing.T) {
	env := setupOrderServiceTest(t)

	order, resolution, err := env.orderSvc.PlaceOrder(twoItemInput(41))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	// 2×30 + 1×40 = 100
	if !order.OrderValue.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected order value: %s", order.OrderValue.String())
	}
	if order.BasePoints != 100 || order.BoostPoints != 0 {
		t.Fatalf("unexpected points: base=%d boost=%d", order.BasePoints, order.BoostPoints)
	}
	if resolution.FinalPoints != 100 {
		t.Fatalf("unexpected resolution: %+v", resolution)
	}

	account, err := env.loyaltySvc.GetAccount(41)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account.Balance != 100 {
		t.Fatalf("expected balance 100, got %d", account.Balance)
	}

	var entry models.LoyaltyEntry
	if err := env.db.Where("reference = ?", fmt.Sprintf("order:%d:earn", order.ID)).First(&entry).Error; err != nil {
		t.Fatalf("load ledger entry failed: %v", err)
	}
	if entry.Points != 100 || entry.Type != constants.LedgerEntryTypeEarn {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestPlaceOrderAppliesBoost(t *testing.T) {
	env := setupOrderServiceTest(t)
	campaign := createLiveCampaign(t, env.db, models.Campaign{
		Name:       "双倍积分",
		Multiplier: decimal.NewFromFloat(2.0),
	})

	order, resolution, err := env.orderSvc.PlaceOrder(twoItemInput(42))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if order.BoostPoints != 100 || resolution.FinalPoints != 200 {
		t.Fatalf("expected boost 100 / final 200, got order=%d resolution=%+v", order.BoostPoints, resolution)
	}

	var usage models.CampaignUsage
	if err := env.db.Where("order_id = ?", order.ID).First(&usage).Error; err != nil {
		t.Fatalf("load usage failed: %v", err)
	}
	if usage.CampaignID != campaign.ID || usage.PointsAwarded != 100 {
		t.Fatalf("unexpected usage: %+v", usage)
	}

	var entry models.LoyaltyEntry
	if err := env.db.Where("reference = ?", fmt.Sprintf("order:%d:earn", order.ID)).First(&entry).Error; err != nil {
		t.Fatalf("load ledger entry failed: %v", err)
	}
	if entry.Points != 200 || entry.BasePoints != 100 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if len(entry.BoostRefs) != 1 || entry.BoostRefs[0].CampaignID != campaign.ID || entry.BoostRefs[0].PointsAdded != 100 {
		t.Fatalf("unexpected boost refs: %+v", entry.BoostRefs)
	}

	account, err := env.loyaltySvc.GetAccount(42)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account.Balance != 200 {
		t.Fatalf("expected balance 200, got %d", account.Balance)
	}
}

func TestPlaceOrderWithRedemption(t *testing.T) {
	env := setupOrderServiceTest(t)
	if err := env.db.Transaction(func(tx *gorm.DB) error {
		_, err := env.loyaltySvc.EarnInTx(tx, EarnInput{
			UserID:    43,
			Points:    2000,
			Reference: "seed:43",
		})
		return err
	}); err != nil {
		t.Fatalf("seed points failed: %v", err)
	}

	input := twoItemInput(43)
	input.RedeemPoints = 1000
	order, _, err := env.orderSvc.PlaceOrder(input)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if !order.IsLoyaltyApplied || order.LoyaltyPointsUsed != 1000 {
		t.Fatalf("expected redemption applied, got %+v", order)
	}
	// 默认 1000 积分抵 5 元
	if !order.LoyaltyDiscount.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected discount: %s", order.LoyaltyDiscount.String())
	}

	account, err := env.loyaltySvc.GetAccount(43)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	// 2000 − 1000 + 100
	if account.Balance != 1100 {
		t.Fatalf("expected balance 1100, got %d", account.Balance)
	}
}

func TestPlaceOrderRedemptionFailureAbortsOrder(t *testing.T) {
	env := setupOrderServiceTest(t)

	input := twoItemInput(44)
	input.RedeemPoints = 1000
	if _, _, err := env.orderSvc.PlaceOrder(input); !errors.Is(err, ErrLoyaltyInsufficientPoints) {
		t.Fatalf("expected insufficient points, got: %v", err)
	}

	var count int64
	if err := env.db.Model(&models.Order{}).Where("user_id = ?", 44).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no order persisted, got %d", count)
	}
}

func TestPlaceOrderDiscountClampsOrderValue(t *testing.T) {
	env := setupOrderServiceTest(t)

	input := twoItemInput(45)
	input.DiscountValue = models.NewMoneyFromDecimal(decimal.NewFromInt(500))
	order, resolution, err := env.orderSvc.PlaceOrder(input)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if !order.OrderValue.Decimal.Equal(decimal.Zero) {
		t.Fatalf("expected clamped order value, got %s", order.OrderValue.String())
	}
	if order.BasePoints != 0 || resolution.FinalPoints != 0 {
		t.Fatalf("expected zero points, got %+v", resolution)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	env := setupOrderServiceTest(t)

	if _, _, err := env.orderSvc.PlaceOrder(PlaceOrderInput{UserID: 0}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected user required, got: %v", err)
	}
	if _, _, err := env.orderSvc.PlaceOrder(PlaceOrderInput{UserID: 46}); !errors.Is(err, ErrOrderItemsRequired) {
		t.Fatalf("expected items required, got: %v", err)
	}
}

func TestOrderUpdateStatus(t *testing.T) {
	env := setupOrderServiceTest(t)
	order, _, err := env.orderSvc.PlaceOrder(twoItemInput(47))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if err := env.orderSvc.UpdateStatus(order.ID, "shipped"); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected invalid status, got: %v", err)
	}

	if err := env.orderSvc.UpdateStatus(order.ID, constants.OrderStatusDelivered); err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	updated, err := env.orderSvc.GetOrder(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if updated.Status != constants.OrderStatusDelivered || updated.DeliveredOn == nil {
		t.Fatalf("expected delivered with timestamp, got %+v", updated)
	}
}
