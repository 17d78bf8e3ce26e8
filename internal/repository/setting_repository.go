package repository

import (
	"errors"

	"github.com/loyalty-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository 系统设置数据访问接口
type SettingRepository interface {
	Get(key string) (*models.Setting, error)
	Upsert(setting *models.Setting) error
	Delete(key string) error
	WithTx(tx *gorm.DB) *GormSettingRepository
}

// GormSettingRepository GORM 系统设置仓储实现
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建系统设置仓储
func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSettingRepository) WithTx(tx *gorm.DB) *GormSettingRepository {
	if tx == nil {
		return r
	}
	return &GormSettingRepository{db: tx}
}

// Get 按键获取设置
func (r *GormSettingRepository) Get(key string) (*models.Setting, error) {
	if key == "" {
		return nil, nil
	}
	var setting models.Setting
	if err := r.db.Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// Upsert 写入设置（按键覆盖）
func (r *GormSettingRepository) Upsert(setting *models.Setting) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value_json"}),
	}).Create(setting).Error
}

// Delete 删除设置
func (r *GormSettingRepository) Delete(key string) error {
	return r.db.Where("key = ?", key).Delete(&models.Setting{}).Error
}
