package models

import "time"

// StockLog 库存变更日志（只追加）
type StockLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`                         // 主键
	StockID          uint      `gorm:"index" json:"stock_id"`                        // 库存记录ID
	StoreID          uint      `gorm:"index;not null" json:"store_id"`               // 门店ID
	ProductID        uint      `gorm:"index;not null" json:"product_id"`             // 商品ID
	CategoryID       uint      `gorm:"index;not null" json:"category_id"`            // 分类ID
	SubCategoryID    uint      `gorm:"index" json:"sub_category_id"`                 // 子分类ID
	Action           string    `gorm:"not null" json:"action"`                       // 动作（ADD/UPDATE/REMOVE）
	QuantityChanged  int       `gorm:"not null" json:"quantity_changed"`             // 变更数量
	PreviousQuantity int       `gorm:"not null" json:"previous_quantity"`            // 变更前数量
	Reason           string    `gorm:"default:'Stock Added'" json:"reason"`          // 变更原因
	PerformedID      uint      `gorm:"not null" json:"performed_id"`                 // 操作人ID
	PerformedBy      string    `gorm:"type:varchar(64)" json:"performed_by"`         // 操作人名称
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                      // 发生时间
}

// TableName 指定表名
func (StockLog) TableName() string {
	return "stock_logs"
}
