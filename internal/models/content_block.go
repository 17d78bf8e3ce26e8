package models

import (
	"time"

	"gorm.io/gorm"
)

// ContentBlock 运营内容区块（横幅、落地页内容等）
type ContentBlock struct {
	ID         uint           `gorm:"primarykey" json:"id"`                          // 主键
	DeviceType string         `gorm:"type:varchar(16)" json:"device_type"`           // 设备类型（web/mobile/both）
	BannerType string         `gorm:"index" json:"banner_type"`                      // 横幅类型
	Title      string         `gorm:"type:varchar(255)" json:"title"`                // 标题
	Image      string         `gorm:"type:varchar(500)" json:"image"`                // 主图
	Images     StringArray    `gorm:"type:json" json:"images"`                       // 图片集合
	Link       string         `gorm:"type:varchar(500)" json:"link"`                 // 跳转链接
	Links      StringArray    `gorm:"type:json" json:"links"`                        // 链接集合（逐条校验 URL）
	ThemeType  string         `gorm:"type:varchar(16)" json:"theme_type"`            // 主题（light/dark）
	Content    string         `gorm:"type:text" json:"content"`                      // 正文内容
	UpdatedBy  string         `gorm:"type:varchar(64)" json:"updated_by"`            // 最近修改人
	Status     string         `gorm:"index;not null;default:'active'" json:"status"` // 状态（active/inactive）
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (ContentBlock) TableName() string {
	return "content_blocks"
}
