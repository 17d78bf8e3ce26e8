package models

import (
	"time"

	"gorm.io/gorm"
)

// Tag 客户标签
type Tag struct {
	ID            uint           `gorm:"primarykey" json:"id"`                            // 主键
	Name          string         `gorm:"uniqueIndex;not null" json:"name"`                // 标签名（小写唯一）
	DisplayName   string         `gorm:"not null" json:"display_name"`                    // 展示名称
	Description   string         `gorm:"type:varchar(500)" json:"description"`            // 说明
	Category      string         `gorm:"index;not null;default:'other'" json:"category"`  // 分类（preference/behavior/demographic/engagement/other）
	Color         string         `gorm:"type:varchar(16);default:'#6B7280'" json:"color"` // 展示颜色
	IsActive      bool           `gorm:"not null" json:"is_active"`                       // 是否启用
	CustomerCount int64          `gorm:"not null;default:0" json:"customer_count"`        // 关联客户数（冗余计数）
	CreatedBy     string         `gorm:"type:varchar(64)" json:"created_by"`              // 创建人
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                         // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (Tag) TableName() string {
	return "tags"
}

// CustomerTag 客户与标签的归属关系
type CustomerTag struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                      // 主键
	UserID    uint      `gorm:"uniqueIndex:idx_customer_tag;not null" json:"user_id"`      // 用户ID
	TagID     uint      `gorm:"uniqueIndex:idx_customer_tag;index;not null" json:"tag_id"` // 标签ID
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                   // 绑定时间
}

// TableName 指定表名
func (CustomerTag) TableName() string {
	return "customer_tags"
}
