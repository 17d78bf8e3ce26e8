package repository

import (
	"errors"
	"strings"

	"github.com/loyalty-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoyaltyRepository 积分台账数据访问接口
type LoyaltyRepository interface {
	GetAccountByUserID(userID uint) (*models.LoyaltyAccount, error)
	GetAccountByUserIDForUpdate(userID uint) (*models.LoyaltyAccount, error)
	CreateAccount(account *models.LoyaltyAccount) error
	UpdateAccount(account *models.LoyaltyAccount) error
	ListAccounts(page, pageSize int) ([]models.LoyaltyAccount, int64, error)
	CreateEntry(entry *models.LoyaltyEntry) error
	GetEntryByReference(reference string) (*models.LoyaltyEntry, error)
	ListEntries(filter LoyaltyEntryListFilter) ([]models.LoyaltyEntry, int64, error)
	SumEntryPoints(userID uint) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormLoyaltyRepository
}

// GormLoyaltyRepository GORM 积分台账仓储实现
type GormLoyaltyRepository struct {
	db *gorm.DB
}

// NewLoyaltyRepository 创建积分台账仓储
func NewLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLoyaltyRepository) WithTx(tx *gorm.DB) *GormLoyaltyRepository {
	if tx == nil {
		return r
	}
	return &GormLoyaltyRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormLoyaltyRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetAccountByUserID 按用户ID获取积分账户
func (r *GormLoyaltyRepository) GetAccountByUserID(userID uint) (*models.LoyaltyAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	var account models.LoyaltyAccount
	if err := r.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByUserIDForUpdate 按用户ID加锁获取积分账户
func (r *GormLoyaltyRepository) GetAccountByUserIDForUpdate(userID uint) (*models.LoyaltyAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	var account models.LoyaltyAccount
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// CreateAccount 创建积分账户
func (r *GormLoyaltyRepository) CreateAccount(account *models.LoyaltyAccount) error {
	return r.db.Create(account).Error
}

// UpdateAccount 更新积分账户
func (r *GormLoyaltyRepository) UpdateAccount(account *models.LoyaltyAccount) error {
	return r.db.Save(account).Error
}

// ListAccounts 分页查询积分账户
func (r *GormLoyaltyRepository) ListAccounts(page, pageSize int) ([]models.LoyaltyAccount, int64, error) {
	query := r.db.Model(&models.LoyaltyAccount{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var accounts []models.LoyaltyAccount
	if err := query.Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// CreateEntry 追加一条积分流水
func (r *GormLoyaltyRepository) CreateEntry(entry *models.LoyaltyEntry) error {
	return r.db.Create(entry).Error
}

// GetEntryByReference 按参考号获取流水
func (r *GormLoyaltyRepository) GetEntryByReference(reference string) (*models.LoyaltyEntry, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var entry models.LoyaltyEntry
	if err := r.db.Where("reference = ?", reference).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListEntries 分页查询积分流水
func (r *GormLoyaltyRepository) ListEntries(filter LoyaltyEntryListFilter) ([]models.LoyaltyEntry, int64, error) {
	query := r.db.Model(&models.LoyaltyEntry{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var entries []models.LoyaltyEntry
	if err := query.Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// SumEntryPoints 汇总某用户全部流水的积分变动（余额一致性校验用）
func (r *GormLoyaltyRepository) SumEntryPoints(userID uint) (int64, error) {
	var total *int64
	if err := r.db.Model(&models.LoyaltyEntry{}).
		Where("user_id = ?", userID).
		Select("SUM(points)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
