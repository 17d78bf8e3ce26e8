package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/logger"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LoyaltyService 积分台账服务
//
// 账户余额为冗余缓存，权威值为流水之和；二者由 AuditAccount 校验。
type LoyaltyService struct {
	loyaltyRepo repository.LoyaltyRepository
	settingSvc  *SettingService
}

// EarnInput 积分入账输入
type EarnInput struct {
	UserID     uint
	Points     int64
	BasePoints int64
	BoostRefs  models.BoostRefList
	OrderID    *uint
	Reference  string
	Reason     string
}

// RedeemInput 积分兑换输入
type RedeemInput struct {
	UserID    uint
	Points    int64
	OrderID   *uint
	Reference string
	Reason    string
}

// DeductInput 管理端积分扣减输入
type DeductInput struct {
	UserID uint
	Points int64
	Reason string
}

// NewLoyaltyService 创建积分台账服务
func NewLoyaltyService(loyaltyRepo repository.LoyaltyRepository, settingSvc *SettingService) *LoyaltyService {
	return &LoyaltyService{
		loyaltyRepo: loyaltyRepo,
		settingSvc:  settingSvc,
	}
}

// GetAccount 获取积分账户（不存在时自动创建）
func (s *LoyaltyService) GetAccount(userID uint) (*models.LoyaltyAccount, error) {
	if userID == 0 {
		return nil, ErrLoyaltyAccountNotFound
	}
	account, err := s.loyaltyRepo.GetAccountByUserID(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	now := time.Now()
	account = &models.LoyaltyAccount{UserID: userID, CreatedAt: now, UpdatedAt: now}
	if err := s.loyaltyRepo.CreateAccount(account); err != nil {
		created, queryErr := s.loyaltyRepo.GetAccountByUserID(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, err
	}
	return account, nil
}

// ListEntries 查询积分流水
func (s *LoyaltyService) ListEntries(filter repository.LoyaltyEntryListFilter) ([]models.LoyaltyEntry, int64, error) {
	return s.loyaltyRepo.ListEntries(filter)
}

// BasePointsForOrder 按订单金额折算基础积分（向下取整）
func (s *LoyaltyService) BasePointsForOrder(orderValue models.Money) (int64, error) {
	settings, err := s.settingSvc.GetLoyaltySettings()
	if err != nil {
		return 0, err
	}
	if orderValue.Decimal.LessThanOrEqual(decimal.Zero) {
		return 0, nil
	}
	return orderValue.Decimal.Mul(settings.PointsPerDollar).Floor().IntPart(), nil
}

// RedemptionDiscount 计算指定积分可抵扣的金额
func (s *LoyaltyService) RedemptionDiscount(points int64) (models.Money, error) {
	settings, err := s.settingSvc.GetLoyaltySettings()
	if err != nil {
		return models.Money{}, err
	}
	if points <= 0 {
		return models.NewMoneyFromDecimal(decimal.Zero), nil
	}
	discount := decimal.NewFromInt(points).
		Div(decimal.NewFromInt(settings.RedemptionRate)).
		Mul(settings.RewardValuePerRate.Decimal)
	return models.NewMoneyFromDecimal(discount), nil
}

// EarnInTx 在事务内为用户入账积分，参考号幂等
func (s *LoyaltyService) EarnInTx(tx *gorm.DB, input EarnInput) (*models.LoyaltyEntry, error) {
	if tx == nil {
		return nil, ErrLoyaltyEntryCreateFailed
	}
	if input.UserID == 0 {
		return nil, ErrLoyaltyAccountNotFound
	}
	if input.Points < 0 {
		return nil, ErrLoyaltyInvalidPoints
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, ErrLoyaltyEntryCreateFailed
	}

	repo := s.loyaltyRepo.WithTx(tx)
	exists, err := repo.GetEntryByReference(reference)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return exists, nil
	}

	now := time.Now()
	account, err := s.ensureAccountForUpdate(repo, input.UserID, now)
	if err != nil {
		return nil, err
	}
	account.Balance += input.Points
	account.UpdatedAt = now
	if err := repo.UpdateAccount(account); err != nil {
		return nil, err
	}

	entry := &models.LoyaltyEntry{
		UserID:     input.UserID,
		Type:       constants.LedgerEntryTypeEarn,
		Points:     input.Points,
		BasePoints: input.BasePoints,
		BoostRefs:  input.BoostRefs,
		OrderID:    input.OrderID,
		Reference:  reference,
		Reason:     cleanLedgerReason(input.Reason, "订单积分入账"),
		CreatedAt:  now,
	}
	if err := repo.CreateEntry(entry); err != nil {
		return nil, ErrLoyaltyEntryCreateFailed
	}
	return entry, nil
}

// RedeemInTx 在事务内兑换积分抵扣订单金额，返回抵扣额
func (s *LoyaltyService) RedeemInTx(tx *gorm.DB, input RedeemInput) (models.Money, *models.LoyaltyEntry, error) {
	if tx == nil {
		return models.Money{}, nil, ErrLoyaltyEntryCreateFailed
	}
	if input.UserID == 0 {
		return models.Money{}, nil, ErrLoyaltyAccountNotFound
	}
	settings, err := s.settingSvc.GetLoyaltySettings()
	if err != nil {
		return models.Money{}, nil, err
	}
	if input.Points <= 0 {
		return models.Money{}, nil, ErrLoyaltyInvalidPoints
	}
	if input.Points < settings.MinRedemptionPoints {
		return models.Money{}, nil, ErrLoyaltyBelowMinRedemption
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return models.Money{}, nil, ErrLoyaltyEntryCreateFailed
	}

	repo := s.loyaltyRepo.WithTx(tx)
	exists, err := repo.GetEntryByReference(reference)
	if err != nil {
		return models.Money{}, nil, err
	}
	if exists != nil {
		discount, discountErr := s.RedemptionDiscount(-exists.Points)
		if discountErr != nil {
			return models.Money{}, nil, discountErr
		}
		return discount, exists, nil
	}

	now := time.Now()
	account, err := s.ensureAccountForUpdate(repo, input.UserID, now)
	if err != nil {
		return models.Money{}, nil, err
	}
	if account.Balance < input.Points {
		return models.Money{}, nil, ErrLoyaltyInsufficientPoints
	}
	account.Balance -= input.Points
	account.UpdatedAt = now
	if err := repo.UpdateAccount(account); err != nil {
		return models.Money{}, nil, err
	}

	entry := &models.LoyaltyEntry{
		UserID:    input.UserID,
		Type:      constants.LedgerEntryTypeRedeem,
		Points:    -input.Points,
		OrderID:   input.OrderID,
		Reference: reference,
		Reason:    cleanLedgerReason(input.Reason, "积分抵扣订单"),
		CreatedAt: now,
	}
	if err := repo.CreateEntry(entry); err != nil {
		return models.Money{}, nil, ErrLoyaltyEntryCreateFailed
	}

	discount := decimal.NewFromInt(input.Points).
		Div(decimal.NewFromInt(settings.RedemptionRate)).
		Mul(settings.RewardValuePerRate.Decimal)
	return models.NewMoneyFromDecimal(discount), entry, nil
}

// Deduct 管理端扣减用户积分（违规回收等场景）
func (s *LoyaltyService) Deduct(input DeductInput) (*models.LoyaltyEntry, error) {
	if input.UserID == 0 {
		return nil, ErrLoyaltyAccountNotFound
	}
	if input.Points <= 0 {
		return nil, ErrLoyaltyInvalidPoints
	}

	var entryResult *models.LoyaltyEntry
	err := s.loyaltyRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.loyaltyRepo.WithTx(tx)
		now := time.Now()
		account, err := s.ensureAccountForUpdate(repo, input.UserID, now)
		if err != nil {
			return err
		}
		if account.Balance < input.Points {
			return ErrLoyaltyInsufficientPoints
		}
		account.Balance -= input.Points
		account.UpdatedAt = now
		if err := repo.UpdateAccount(account); err != nil {
			return err
		}

		entry := &models.LoyaltyEntry{
			UserID:    input.UserID,
			Type:      constants.LedgerEntryTypeDeduct,
			Points:    -input.Points,
			Reference: fmt.Sprintf("deduct:%d:%d", input.UserID, now.UnixNano()),
			Reason:    cleanLedgerReason(input.Reason, "管理员扣减积分"),
			CreatedAt: now,
		}
		if err := repo.CreateEntry(entry); err != nil {
			return ErrLoyaltyEntryCreateFailed
		}
		entryResult = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entryResult, nil
}

// AuditAccount 校验账户余额与流水之和的一致性
func (s *LoyaltyService) AuditAccount(userID uint) error {
	account, err := s.loyaltyRepo.GetAccountByUserID(userID)
	if err != nil {
		return err
	}
	if account == nil {
		return nil
	}
	total, err := s.loyaltyRepo.SumEntryPoints(userID)
	if err != nil {
		return err
	}
	if total != account.Balance {
		logger.Errorw("积分账户余额与流水不一致",
			"user_id", userID,
			"balance", account.Balance,
			"ledger_total", total,
		)
		return ErrLoyaltyAccountOutOfSync
	}
	return nil
}

// AuditAll 分批校验全部账户，返回不一致的用户ID
func (s *LoyaltyService) AuditAll(batchSize int) ([]uint, error) {
	if batchSize <= 0 {
		batchSize = 200
	}
	var divergent []uint
	for page := 1; ; page++ {
		accounts, _, err := s.loyaltyRepo.ListAccounts(page, batchSize)
		if err != nil {
			return divergent, err
		}
		if len(accounts) == 0 {
			return divergent, nil
		}
		for _, account := range accounts {
			if err := s.AuditAccount(account.UserID); err == ErrLoyaltyAccountOutOfSync {
				divergent = append(divergent, account.UserID)
			} else if err != nil {
				return divergent, err
			}
		}
		if len(accounts) < batchSize {
			return divergent, nil
		}
	}
}

func (s *LoyaltyService) ensureAccountForUpdate(repo *repository.GormLoyaltyRepository, userID uint, now time.Time) (*models.LoyaltyAccount, error) {
	account, err := repo.GetAccountByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = &models.LoyaltyAccount{UserID: userID, CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateAccount(account); err != nil {
		created, queryErr := repo.GetAccountByUserIDForUpdate(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, err
	}
	return account, nil
}

func cleanLedgerReason(raw string, fallback string) string {
	reason := strings.TrimSpace(raw)
	if reason == "" {
		return fallback
	}
	return reason
}
