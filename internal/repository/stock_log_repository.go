package repository

import (
	"github.com/loyalty-next/internal/models"

	"gorm.io/gorm"
)

// StockLogRepository 库存日志数据访问接口
type StockLogRepository interface {
	Create(log *models.StockLog) error
	List(filter StockLogListFilter) ([]models.StockLog, int64, error)
	WithTx(tx *gorm.DB) *GormStockLogRepository
}

// GormStockLogRepository GORM 库存日志仓储实现
type GormStockLogRepository struct {
	db *gorm.DB
}

// NewStockLogRepository 创建库存日志仓储
func NewStockLogRepository(db *gorm.DB) *GormStockLogRepository {
	return &GormStockLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockLogRepository) WithTx(tx *gorm.DB) *GormStockLogRepository {
	if tx == nil {
		return r
	}
	return &GormStockLogRepository{db: tx}
}

// Create 追加一条库存日志
func (r *GormStockLogRepository) Create(log *models.StockLog) error {
	return r.db.Create(log).Error
}

// List 分页查询库存日志
func (r *GormStockLogRepository) List(filter StockLogListFilter) ([]models.StockLog, int64, error) {
	query := r.db.Model(&models.StockLog{})
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var logs []models.StockLog
	if err := query.Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
