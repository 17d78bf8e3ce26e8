package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// LoyaltyAccount 积分账户（缓存余额，权威值为流水之和）
type LoyaltyAccount struct {
	ID        uint      `gorm:"primarykey" json:"id"`                 // 主键
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`  // 用户ID
	Balance   int64     `gorm:"not null;default:0" json:"balance"`    // 当前积分余额
	CreatedAt time.Time `gorm:"index" json:"created_at"`              // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`              // 更新时间
}

// TableName 指定表名
func (LoyaltyAccount) TableName() string {
	return "loyalty_accounts"
}

// BoostRef 流水中引用的加成活动明细
type BoostRef struct {
	CampaignID  uint   `json:"campaign_id"`  // 活动ID
	Name        string `json:"name"`         // 活动名称
	BoostType   string `json:"boost_type"`   // 加成类型
	PointsAdded int64  `json:"points_added"` // 该活动贡献的积分
}

// BoostRefList 加成活动明细集合，JSON 存储
type BoostRefList []BoostRef

// Value 实现 driver.Valuer 接口
func (l BoostRefList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *BoostRefList) Scan(value interface{}) error {
	if value == nil {
		*l = BoostRefList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// LoyaltyEntry 积分台账流水（只追加，不修改）
type LoyaltyEntry struct {
	ID         uint         `gorm:"primarykey" json:"id"`                     // 主键
	UserID     uint         `gorm:"index;not null" json:"user_id"`            // 用户ID
	Type       string       `gorm:"index;not null" json:"type"`               // 类型（earn/redeem/deduct）
	Points     int64        `gorm:"not null" json:"points"`                   // 积分变动（earn 为正，redeem/deduct 为负）
	BasePoints int64        `gorm:"not null;default:0" json:"base_points"`    // 基础积分（earn 流水）
	BoostRefs  BoostRefList `gorm:"type:json" json:"boost_refs"`              // 参与加成的活动明细
	OrderID    *uint        `gorm:"index" json:"order_id,omitempty"`          // 关联订单ID
	Reference  string       `gorm:"uniqueIndex;not null" json:"reference"`    // 流水参考号（幂等用）
	Reason     string       `gorm:"type:varchar(255)" json:"reason"`          // 变动原因
	CreatedAt  time.Time    `gorm:"index" json:"created_at"`                  // 发生时间
}

// TableName 指定表名
func (LoyaltyEntry) TableName() string {
	return "loyalty_entries"
}
