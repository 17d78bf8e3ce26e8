package repository

import (
	"errors"
	"strings"

	"github.com/loyalty-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	CountByUser(userID uint) (int64, error)
	Create(order *models.Order) error
	Update(order *models.Order) error
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 订单仓储实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 按ID获取订单（含订单项）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 按订单编号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 分页查询订单
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Channel != "" {
		query = query.Where("channel = ?", filter.Channel)
	}
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Where("order_no = ?", orderNo)
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

	var orders []models.Order
	if err := query.Preload("Items").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// CountByUser 统计某用户的订单数
func (r *GormOrderRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Create 创建订单（级联创建订单项）
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// Update 更新订单
func (r *GormOrderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

// UpdateStatus 更新订单状态（可附带其他字段）
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}
