package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 商品分类
type Category struct {
	ID              uint           `gorm:"primarykey" json:"id"`                      // 主键
	Name            string         `gorm:"not null" json:"name"`                      // 分类名称
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`          // 唯一标识（由名称生成）
	Quantity        int            `gorm:"not null;default:0" json:"quantity"`        // 商品数量
	Status          string         `gorm:"index;not null;default:'active'" json:"status"` // 状态（active/inactive）
	MetaTitle       string         `gorm:"type:varchar(255)" json:"meta_title"`       // SEO 标题
	MetaDescription string         `gorm:"type:varchar(500)" json:"meta_description"` // SEO 描述
	AddedBy         string         `gorm:"type:varchar(64)" json:"added_by"`          // 创建人
	UpdatedBy       string         `gorm:"type:varchar(64)" json:"updated_by"`        // 最近修改人
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                   // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
