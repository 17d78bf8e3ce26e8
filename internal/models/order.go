package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（积分视角裁剪：下单流程为加成引擎的调用方）
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo         string         `gorm:"uniqueIndex;not null" json:"order_no"`                          // 订单编号
	UserID          uint           `gorm:"index;not null" json:"user_id"`                                 // 用户ID
	AddressID       uint           `gorm:"index" json:"address_id"`                                       // 收货地址ID
	Status          string         `gorm:"index;not null;default:'pending'" json:"status"`                // 订单状态
	Channel         string         `gorm:"index;not null;default:'website'" json:"channel"`               // 下单渠道（website/app）
	OrderValue      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"order_value"`      // 订单金额
	Tax             Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`              // 税费
	DeliveryCharges Money          `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_charges"` // 配送费
	DiscountValue   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_value"`   // 优惠金额

	// 积分相关字段
	LoyaltyPointsUsed int64 `gorm:"not null;default:0" json:"loyalty_points_used"`                    // 抵扣使用的积分
	LoyaltyDiscount   Money `gorm:"type:decimal(20,2);not null;default:0" json:"loyalty_discount"`    // 积分抵扣金额
	IsLoyaltyApplied  bool  `gorm:"not null;default:false" json:"is_loyalty_applied"`                 // 是否使用积分抵扣
	BasePoints        int64 `gorm:"not null;default:0" json:"base_points"`                            // 本单基础积分
	BoostPoints       int64 `gorm:"not null;default:0" json:"boost_points"`                           // 本单加成积分

	DeliveredOn *time.Time     `gorm:"index" json:"delivered_on,omitempty"` // 送达时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`             // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`             // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                      // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单项
type OrderItem struct {
	ID         uint  `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID    uint  `gorm:"index;not null" json:"order_id"`                          // 订单ID
	ProductID  uint  `gorm:"index;not null" json:"product_id"`                        // 商品ID
	CategoryID uint  `gorm:"index;not null" json:"category_id"`                       // 分类ID
	Quantity   int   `gorm:"not null;default:1" json:"quantity"`                      // 数量
	UnitPrice  Money `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价
	TotalPrice Money `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
