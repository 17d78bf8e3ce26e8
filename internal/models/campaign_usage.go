package models

import "time"

// CampaignUsage 活动用量记录（只追加，不修改）
type CampaignUsage struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                      // 主键
	CampaignID    uint      `gorm:"index:idx_campaign_user;not null" json:"campaign_id"`       // 活动ID
	UserID        uint      `gorm:"index:idx_campaign_user;not null" json:"user_id"`           // 用户ID
	OrderID       uint      `gorm:"index;not null" json:"order_id"`                            // 订单ID
	PointsAwarded int64     `gorm:"not null;default:0" json:"points_awarded"`                  // 本次加成积分（不含基础积分）
	BasePoints    int64     `gorm:"not null;default:0" json:"base_points"`                     // 基础积分
	OrderValue    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"order_value"`  // 订单金额
	Channel       string    `gorm:"type:varchar(16)" json:"channel"`                           // 下单渠道
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                   // 发生时间
}

// TableName 指定表名
func (CampaignUsage) TableName() string {
	return "campaign_usages"
}
