package repository

import (
	"errors"
	"strings"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampaignRepository 活动数据访问接口
type CampaignRepository interface {
	GetByID(id uint) (*models.Campaign, error)
	GetByIDForUpdate(id uint) (*models.Campaign, error)
	ListActive() ([]models.Campaign, error)
	ListByStatus(statuses ...string) ([]models.Campaign, error)
	List(filter CampaignListFilter) ([]models.Campaign, int64, error)
	Create(campaign *models.Campaign) error
	Update(campaign *models.Campaign) error
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	SoftDelete(id uint) error
	ReserveUse(campaignID uint) (bool, error)
	ApplyUsageCounters(campaignID uint, points int64, orderValue models.Money, newCustomer bool) error
	ResetCounters(campaignID uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormCampaignRepository
}

// GormCampaignRepository GORM 活动仓储实现
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository 创建活动仓储
func NewCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCampaignRepository) WithTx(tx *gorm.DB) *GormCampaignRepository {
	if tx == nil {
		return r
	}
	return &GormCampaignRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormCampaignRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 按ID获取活动
func (r *GormCampaignRepository) GetByID(id uint) (*models.Campaign, error) {
	if id == 0 {
		return nil, nil
	}
	var campaign models.Campaign
	if err := r.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// GetByIDForUpdate 按ID加锁获取活动（计数器强一致更新用）
func (r *GormCampaignRepository) GetByIDForUpdate(id uint) (*models.Campaign, error) {
	if id == 0 {
		return nil, nil
	}
	var campaign models.Campaign
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// ListActive 获取全部进行中的活动（资格筛选的候选集，按优先级降序、ID升序）
func (r *GormCampaignRepository) ListActive() ([]models.Campaign, error) {
	var campaigns []models.Campaign
	if err := r.db.Where("status = ?", constants.CampaignStatusActive).
		Order("priority DESC, id ASC").
		Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// ListByStatus 按状态集合获取活动
func (r *GormCampaignRepository) ListByStatus(statuses ...string) ([]models.Campaign, error) {
	if len(statuses) == 0 {
		return []models.Campaign{}, nil
	}
	var campaigns []models.Campaign
	if err := r.db.Where("status IN ?", statuses).
		Order("priority DESC, id ASC").
		Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// List 分页查询活动
func (r *GormCampaignRepository) List(filter CampaignListFilter) ([]models.Campaign, int64, error) {
	query := r.db.Model(&models.Campaign{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BoostType != "" {
		query = query.Where("boost_type = ?", filter.BoostType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var campaigns []models.Campaign
	if err := query.Order("id DESC").Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// Create 创建活动
func (r *GormCampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

// Update 更新活动
func (r *GormCampaignRepository) Update(campaign *models.Campaign) error {
	return r.db.Save(campaign).Error
}

// UpdateStatus 更新活动状态（可附带其他字段）
func (r *GormCampaignRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Campaign{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDelete 软删除活动（用量历史保留可追溯）
func (r *GormCampaignRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.Campaign{}, id).Error
}

// ReserveUse 条件自增使用次数：仅当未达 maxTotalUses 时生效，
// 返回是否抢占成功。并发下单竞争同一活动名额依赖该条件更新避免超发。
func (r *GormCampaignRepository) ReserveUse(campaignID uint) (bool, error) {
	result := r.db.Model(&models.Campaign{}).
		Where("id = ? AND (max_total_uses = 0 OR current_total_uses < max_total_uses)", campaignID).
		UpdateColumn("current_total_uses", gorm.Expr("current_total_uses + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ApplyUsageCounters 累加活动发放计数与统计字段
func (r *GormCampaignRepository) ApplyUsageCounters(campaignID uint, points int64, orderValue models.Money, newCustomer bool) error {
	updates := map[string]interface{}{
		"current_points_awarded": gorm.Expr("current_points_awarded + ?", points),
		"total_points_awarded":   gorm.Expr("total_points_awarded + ?", points),
		"total_orders":           gorm.Expr("total_orders + 1"),
		"revenue_influenced":     gorm.Expr("revenue_influenced + ?", orderValue.Decimal),
	}
	if newCustomer {
		updates["unique_customers"] = gorm.Expr("unique_customers + 1")
	}
	return r.db.Model(&models.Campaign{}).Where("id = ?", campaignID).Updates(updates).Error
}

// ResetCounters 管理端重置用量计数器（历史记录不受影响）
func (r *GormCampaignRepository) ResetCounters(campaignID uint) error {
	return r.db.Model(&models.Campaign{}).Where("id = ?", campaignID).Updates(map[string]interface{}{
		"current_points_awarded": 0,
		"current_total_uses":     0,
	}).Error
}
