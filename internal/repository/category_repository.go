package repository

import (
	"errors"

	"github.com/loyalty-next/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository 商品分类数据访问接口
type CategoryRepository interface {
	GetByID(id uint) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	CountBySlug(slug string, excludeID uint) (int64, error)
	List(page, pageSize int, status, search string) ([]models.Category, int64, error)
	Create(category *models.Category) error
	Update(category *models.Category) error
	SoftDelete(id uint) error
	WithTx(tx *gorm.DB) *GormCategoryRepository
}

// GormCategoryRepository GORM 商品分类仓储实现
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建商品分类仓储
func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCategoryRepository) WithTx(tx *gorm.DB) *GormCategoryRepository {
	if tx == nil {
		return r
	}
	return &GormCategoryRepository{db: tx}
}

// GetByID 按ID获取分类
func (r *GormCategoryRepository) GetByID(id uint) (*models.Category, error) {
	if id == 0 {
		return nil, nil
	}
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// GetBySlug 按 slug 获取分类
func (r *GormCategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	if slug == "" {
		return nil, nil
	}
	var category models.Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// CountBySlug 统计 slug 占用数量（生成唯一 slug 时排除自身）
func (r *GormCategoryRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	query := r.db.Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// List 分页查询分类
func (r *GormCategoryRepository) List(page, pageSize int, status, search string) ([]models.Category, int64, error) {
	query := r.db.Model(&models.Category{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var categories []models.Category
	if err := query.Order("id DESC").Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// Create 创建分类
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

// Update 更新分类
func (r *GormCategoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

// SoftDelete 软删除分类
func (r *GormCategoryRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.Category{}, id).Error
}
