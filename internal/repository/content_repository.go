package repository

import (
	"errors"

	"github.com/loyalty-next/internal/models"

	"gorm.io/gorm"
)

// ContentRepository 内容区块数据访问接口
type ContentRepository interface {
	GetByID(id uint) (*models.ContentBlock, error)
	List(filter ContentListFilter) ([]models.ContentBlock, int64, error)
	Create(block *models.ContentBlock) error
	Update(block *models.ContentBlock) error
	SoftDelete(id uint) error
	WithTx(tx *gorm.DB) *GormContentRepository
}

// GormContentRepository GORM 内容区块仓储实现
type GormContentRepository struct {
	db *gorm.DB
}

// NewContentRepository 创建内容区块仓储
func NewContentRepository(db *gorm.DB) *GormContentRepository {
	return &GormContentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormContentRepository) WithTx(tx *gorm.DB) *GormContentRepository {
	if tx == nil {
		return r
	}
	return &GormContentRepository{db: tx}
}

// GetByID 按ID获取内容区块
func (r *GormContentRepository) GetByID(id uint) (*models.ContentBlock, error) {
	if id == 0 {
		return nil, nil
	}
	var block models.ContentBlock
	if err := r.db.First(&block, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &block, nil
}

// List 分页查询内容区块
func (r *GormContentRepository) List(filter ContentListFilter) ([]models.ContentBlock, int64, error) {
	query := r.db.Model(&models.ContentBlock{})
	if filter.BannerType != "" {
		query = query.Where("banner_type = ?", filter.BannerType)
	}
	if filter.DeviceType != "" {
		query = query.Where("device_type = ?", filter.DeviceType)
	}
	if filter.OnlyActive {
		query = query.Where("status = ?", "active")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var blocks []models.ContentBlock
	if err := query.Order("id DESC").Find(&blocks).Error; err != nil {
		return nil, 0, err
	}
	return blocks, total, nil
}

// Create 创建内容区块
func (r *GormContentRepository) Create(block *models.ContentBlock) error {
	return r.db.Create(block).Error
}

// Update 更新内容区块
func (r *GormContentRepository) Update(block *models.ContentBlock) error {
	return r.db.Save(block).Error
}

// SoftDelete 软删除内容区块
func (r *GormContentRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.ContentBlock{}, id).Error
}
