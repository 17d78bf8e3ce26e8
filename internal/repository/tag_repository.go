package repository

import (
	"errors"
	"strings"

	"github.com/loyalty-next/internal/models"

	"gorm.io/gorm"
)

// TagRepository 客户标签数据访问接口
type TagRepository interface {
	GetByID(id uint) (*models.Tag, error)
	GetByName(name string) (*models.Tag, error)
	List(filter TagListFilter) ([]models.Tag, int64, error)
	Create(tag *models.Tag) error
	Update(tag *models.Tag) error
	SoftDelete(id uint) error
	AddMember(userID, tagID uint) (bool, error)
	RemoveMember(userID, tagID uint) (bool, error)
	TagIDsByUser(userID uint) ([]uint, error)
	AdjustCustomerCount(tagID uint, delta int64) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormTagRepository
}

// GormTagRepository GORM 客户标签仓储实现
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository 创建客户标签仓储
func NewTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTagRepository) WithTx(tx *gorm.DB) *GormTagRepository {
	if tx == nil {
		return r
	}
	return &GormTagRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormTagRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 按ID获取标签
func (r *GormTagRepository) GetByID(id uint) (*models.Tag, error) {
	if id == 0 {
		return nil, nil
	}
	var tag models.Tag
	if err := r.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// GetByName 按名称获取标签（名称统一小写）
func (r *GormTagRepository) GetByName(name string) (*models.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, nil
	}
	var tag models.Tag
	if err := r.db.Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// List 分页查询标签
func (r *GormTagRepository) List(filter TagListFilter) ([]models.Tag, int64, error) {
	query := r.db.Model(&models.Tag{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("name LIKE ? OR display_name LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var tags []models.Tag
	if err := query.Order("id DESC").Find(&tags).Error; err != nil {
		return nil, 0, err
	}
	return tags, total, nil
}

// Create 创建标签
func (r *GormTagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

// Update 更新标签
func (r *GormTagRepository) Update(tag *models.Tag) error {
	return r.db.Save(tag).Error
}

// SoftDelete 软删除标签
func (r *GormTagRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.Tag{}, id).Error
}

// AddMember 建立客户与标签的绑定，已存在时返回 false
func (r *GormTagRepository) AddMember(userID, tagID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.CustomerTag{}).
		Where("user_id = ? AND tag_id = ?", userID, tagID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if err := r.db.Create(&models.CustomerTag{UserID: userID, TagID: tagID}).Error; err != nil {
		return false, err
	}
	return true, nil
}

// RemoveMember 解除客户与标签的绑定，返回是否有记录被删除
func (r *GormTagRepository) RemoveMember(userID, tagID uint) (bool, error) {
	result := r.db.Where("user_id = ? AND tag_id = ?", userID, tagID).
		Delete(&models.CustomerTag{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// TagIDsByUser 获取客户当前绑定的全部标签ID（资格判定用）
func (r *GormTagRepository) TagIDsByUser(userID uint) ([]uint, error) {
	if userID == 0 {
		return []uint{}, nil
	}
	var ids []uint
	if err := r.db.Model(&models.CustomerTag{}).
		Where("user_id = ?", userID).
		Pluck("tag_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// AdjustCustomerCount 调整标签的冗余客户计数
func (r *GormTagRepository) AdjustCustomerCount(tagID uint, delta int64) error {
	if delta == 0 {
		return nil
	}
	return r.db.Model(&models.Tag{}).
		Where("id = ?", tagID).
		UpdateColumn("customer_count", gorm.Expr("customer_count + ?", delta)).Error
}
