package repository

import (
	"time"

	"github.com/loyalty-next/internal/models"

	"gorm.io/gorm"
)

// CampaignUsageRepository 活动用量数据访问接口
type CampaignUsageRepository interface {
	Create(usage *models.CampaignUsage) error
	CountByCampaignAndUser(campaignID, userID uint) (int64, error)
	SumPointsByCampaignAndUserSince(campaignID, userID uint, since *time.Time) (int64, error)
	ExistsByCampaignAndUser(campaignID, userID uint) (bool, error)
	ListByOrder(orderID uint) ([]models.CampaignUsage, error)
	List(filter CampaignUsageListFilter) ([]models.CampaignUsage, int64, error)
	WithTx(tx *gorm.DB) *GormCampaignUsageRepository
}

// GormCampaignUsageRepository GORM 活动用量仓储实现
type GormCampaignUsageRepository struct {
	db *gorm.DB
}

// NewCampaignUsageRepository 创建活动用量仓储
func NewCampaignUsageRepository(db *gorm.DB) *GormCampaignUsageRepository {
	return &GormCampaignUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCampaignUsageRepository) WithTx(tx *gorm.DB) *GormCampaignUsageRepository {
	if tx == nil {
		return r
	}
	return &GormCampaignUsageRepository{db: tx}
}

// Create 追加一条用量记录
func (r *GormCampaignUsageRepository) Create(usage *models.CampaignUsage) error {
	return r.db.Create(usage).Error
}

// CountByCampaignAndUser 统计某客户在活动中的使用次数
func (r *GormCampaignUsageRepository) CountByCampaignAndUser(campaignID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CampaignUsage{}).
		Where("campaign_id = ? AND user_id = ?", campaignID, userID).
		Count(&count).Error
	return count, err
}

// SumPointsByCampaignAndUserSince 统计某客户在窗口期内累计的加成积分；
// since 为 nil 时统计活动全程。
func (r *GormCampaignUsageRepository) SumPointsByCampaignAndUserSince(campaignID, userID uint, since *time.Time) (int64, error) {
	query := r.db.Model(&models.CampaignUsage{}).
		Where("campaign_id = ? AND user_id = ?", campaignID, userID)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	var total *int64
	if err := query.Select("SUM(points_awarded)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// ExistsByCampaignAndUser 判断客户是否使用过该活动（unique_customers 维护用）
func (r *GormCampaignUsageRepository) ExistsByCampaignAndUser(campaignID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.CampaignUsage{}).
		Where("campaign_id = ? AND user_id = ?", campaignID, userID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// ListByOrder 查询某订单的全部用量记录（落账幂等判断用）
func (r *GormCampaignUsageRepository) ListByOrder(orderID uint) ([]models.CampaignUsage, error) {
	if orderID == 0 {
		return []models.CampaignUsage{}, nil
	}
	var usages []models.CampaignUsage
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

// List 分页查询用量记录
func (r *GormCampaignUsageRepository) List(filter CampaignUsageListFilter) ([]models.CampaignUsage, int64, error) {
	query := r.db.Model(&models.CampaignUsage{})
	if filter.CampaignID != 0 {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
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

	var usages []models.CampaignUsage
	if err := query.Order("id DESC").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}
