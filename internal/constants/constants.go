package constants

// 活动状态常量
const (
	CampaignStatusDraft  = "draft"
	CampaignStatusActive = "active"
	CampaignStatusPaused = "paused"
	CampaignStatusEnded  = "ended"
)

// 加成类型常量
const (
	BoostTypeMultiplier  = "multiplier"
	BoostTypeFixedExtra  = "fixed_extra"
	BoostTypeReplaceBase = "replace_base"
)

// 叠加模式常量
const (
	StackingModeMultiplicative = "multiplicative"
	StackingModeAdditive       = "additive"
	StackingModeHighestOnly    = "highest_only"
)

// 每客户积分上限重置周期常量
const (
	ResetPeriodDaily    = "daily"
	ResetPeriodWeekly   = "weekly"
	ResetPeriodCampaign = "campaign"
	ResetPeriodNone     = "none"
)

// 叠加优先级范围
const (
	StackingPriorityMin = 1
	StackingPriorityMax = 10
)

// 下单渠道常量
const (
	ChannelWebsite = "website"
	ChannelApp     = "app"
)

// 积分台账流水类型常量
const (
	LedgerEntryTypeEarn   = "earn"
	LedgerEntryTypeRedeem = "redeem"
	LedgerEntryTypeDeduct = "deduct"
)

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusAccepted  = "accepted"
	OrderStatusRejected  = "rejected"
	OrderStatusOnTheWay  = "on-the-way"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
	OrderStatusReturned  = "returned"
)

// 库存变更动作常量
const (
	StockActionAdd    = "ADD"
	StockActionUpdate = "UPDATE"
	StockActionRemove = "REMOVE"
)

// 客户标签分类常量
const (
	TagCategoryPreference  = "preference"
	TagCategoryBehavior    = "behavior"
	TagCategoryDemographic = "demographic"
	TagCategoryEngagement  = "engagement"
	TagCategoryOther       = "other"
)

// 内容区块类型常量
const (
	ContentBannerLanding        = "landing_page_banner"
	ContentBannerFestival       = "festival_banner"
	ContentBannerSubscribe      = "subscribe_banner"
	ContentBannerCategorySearch = "category_search_banner"
	ContentBannerNone           = "none"
)

// 内容区块主题常量
const (
	ContentThemeLight = "light"
	ContentThemeDark  = "dark"
)

// 通用启用状态常量
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// 设置键常量
const (
	SettingKeyLoyalty = "loyalty_settings"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskCampaignTransition = "campaign:transition"
	TaskCampaignAutoPause  = "campaign:auto_pause"
	TaskLedgerAudit        = "loyalty:ledger_audit"
)
