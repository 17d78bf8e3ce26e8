package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Campaign 积分加成活动
//
// 上限类字段（MaxPointsPerOrder 等）为 0 表示不限制。
// CurrentPointsAwarded / CurrentTotalUses 只增不减，仅管理端重置可清零。
type Campaign struct {
	ID          uint   `gorm:"primarykey" json:"id"`           // 主键
	Name        string `gorm:"not null" json:"name"`           // 活动名称
	Description string `gorm:"type:text" json:"description"`   // 内部说明
	Status      string `gorm:"index;not null" json:"status"`   // 状态（draft/active/paused/ended）

	// 档期：日历日期（"2006-01-02"），按活动时区解释
	StartDate         string  `gorm:"type:varchar(10);index;not null" json:"start_date"` // 开始日期
	EndDate           string  `gorm:"type:varchar(10);index;not null" json:"end_date"`   // 结束日期
	Timezone          string  `gorm:"type:varchar(64)" json:"timezone"`                  // 时区（如 Asia/Kolkata，空为 UTC）
	DaysOfWeek        IntList `gorm:"type:json" json:"days_of_week"`                     // 允许的星期几（0=周日，空为不限）
	TimeWindowEnabled bool    `gorm:"not null;default:false" json:"time_window_enabled"` // 是否限制每日时段
	TimeWindowStart   string  `gorm:"type:varchar(5)" json:"time_window_start"`          // 时段开始（"14:00"，含）
	TimeWindowEnd     string  `gorm:"type:varchar(5)" json:"time_window_end"`            // 时段结束（"16:00"，不含）

	// 目标条件：各组独立启用；未启用的组不构成限制，
	// 启用但集合为空的组不匹配任何订单
	ProductsEnabled     bool        `gorm:"not null;default:false" json:"products_enabled"`       // 是否限制商品
	ProductIDs          IDList      `gorm:"type:json" json:"product_ids"`                         // 目标商品ID集合
	CategoriesEnabled   bool        `gorm:"not null;default:false" json:"categories_enabled"`     // 是否限制分类
	CategoryIDs         IDList      `gorm:"type:json" json:"category_ids"`                        // 目标分类ID集合
	ChannelsEnabled     bool        `gorm:"not null;default:false" json:"channels_enabled"`       // 是否限制渠道
	ChannelList         StringArray `gorm:"type:json" json:"channel_list"`                        // 渠道集合（website/app）
	CustomerTagsEnabled bool        `gorm:"not null;default:false" json:"customer_tags_enabled"`  // 是否限制客户标签
	TagIDs              IDList      `gorm:"type:json" json:"tag_ids"`                             // 目标标签ID集合
	SpecificCustomerIDs IDList      `gorm:"type:json" json:"specific_customer_ids"`               // 指定客户ID集合
	OrderCriteriaEnabled bool       `gorm:"not null;default:false" json:"order_criteria_enabled"` // 是否限制订单金额
	MinOrderValue       Money       `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_value"` // 最低订单金额
	MaxOrderValue       Money       `gorm:"type:decimal(20,2);not null;default:0" json:"max_order_value"` // 最高订单金额（0 不限）

	// 加成定义：按 BoostType 取用对应的数值字段
	BoostType       string          `gorm:"not null" json:"boost_type"`                                    // 类型（multiplier/fixed_extra/replace_base）
	Multiplier      decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"multiplier"`       // 倍率（boostType=multiplier）
	FixedPoints     int64           `gorm:"not null;default:0" json:"fixed_points"`                        // 固定加成积分（boostType=fixed_extra）
	ReplacementRate decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"replacement_rate"` // 替换积分率（boostType=replace_base）

	// 上限与用量
	MaxPointsPerOrder    int64  `gorm:"not null;default:0" json:"max_points_per_order"`     // 单笔订单加成积分上限
	MaxPointsPerCustomer int64  `gorm:"not null;default:0" json:"max_points_per_customer"`  // 每客户加成积分上限
	ResetPeriod          string `gorm:"not null;default:'none'" json:"reset_period"`        // 每客户上限重置周期（daily/weekly/campaign/none）
	GlobalLimitEnabled   bool   `gorm:"not null;default:false" json:"global_limit_enabled"` // 是否启用全局积分预算
	MaxTotalPoints       int64  `gorm:"not null;default:0" json:"max_total_points"`         // 全局积分预算
	CurrentPointsAwarded int64  `gorm:"not null;default:0" json:"current_points_awarded"`   // 已发放加成积分（累加计数器）
	MaxUsesPerCustomer   int    `gorm:"not null;default:0" json:"max_uses_per_customer"`    // 每客户使用次数上限
	MaxTotalUses         int    `gorm:"not null;default:0" json:"max_total_uses"`           // 总使用次数上限
	CurrentTotalUses     int    `gorm:"not null;default:0" json:"current_total_uses"`       // 已使用次数（累加计数器）

	// 叠加规则
	AllowStacking bool   `gorm:"not null" json:"allow_stacking"`                        // 是否允许与其他活动叠加（false 独占整单）
	Priority      int    `gorm:"index;not null;default:5" json:"priority"`              // 优先级（1-10，越大越先处理）
	StackingMode  string `gorm:"not null;default:'multiplicative'" json:"stacking_mode"` // 叠加模式（multiplicative/additive/highest_only）

	// 统计（冗余计数，由用量落账维护）
	TotalPointsAwarded int64 `gorm:"not null;default:0" json:"total_points_awarded"` // 加成积分发放总量
	TotalOrders        int64 `gorm:"not null;default:0" json:"total_orders"`         // 参与订单数
	UniqueCustomers    int64 `gorm:"not null;default:0" json:"unique_customers"`     // 参与客户数
	RevenueInfluenced  Money `gorm:"type:decimal(20,2);not null;default:0" json:"revenue_influenced"` // 参与订单金额总量

	DisplayToCustomers bool   `gorm:"not null" json:"display_to_customers"`              // 是否对客户展示
	BadgeText          string `gorm:"type:varchar(64)" json:"badge_text"`                // 客户端角标文案
	CreatedBy          string `gorm:"type:varchar(64)" json:"created_by"`                // 创建人

	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间（有用量的活动不做物理删除）
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "campaigns"
}
