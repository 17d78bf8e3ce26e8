package repository

import "time"

// CampaignListFilter 查询活动列表的过滤条件
type CampaignListFilter struct {
	Page      int
	PageSize  int
	Status    string
	BoostType string
	Search    string
}

// CampaignUsageListFilter 查询活动用量的过滤条件
type CampaignUsageListFilter struct {
	Page        int
	PageSize    int
	CampaignID  uint
	UserID      uint
	OrderID     uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// LoyaltyEntryListFilter 查询积分流水的过滤条件
type LoyaltyEntryListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Type        string
	OrderID     uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	Channel     string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// StockLogListFilter 查询库存日志的过滤条件
type StockLogListFilter struct {
	Page      int
	PageSize  int
	StoreID   uint
	ProductID uint
	Action    string
}

// TagListFilter 查询标签列表的过滤条件
type TagListFilter struct {
	Page       int
	PageSize   int
	Category   string
	Search     string
	OnlyActive bool
}

// ContentListFilter 查询内容区块的过滤条件
type ContentListFilter struct {
	Page       int
	PageSize   int
	BannerType string
	DeviceType string
	OnlyActive bool
}
