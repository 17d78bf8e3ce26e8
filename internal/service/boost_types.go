package service

import (
	"time"

	"github.com/loyalty-next/internal/models"
)

// OrderContext 加成计算的订单上下文
//
// BasePoints 为本单基础积分，由积分服务按订单金额折算后传入。
// Now 为零值时按当前时间计算。
type OrderContext struct {
	UserID     uint
	OrderID    uint
	Channel    string
	OrderValue models.Money
	Items      []models.OrderItem
	BasePoints int64
	Now        time.Time
}

// AppliedBoost 单个活动在本单的加成结果
type AppliedBoost struct {
	CampaignID         uint   `json:"campaign_id"`
	Name               string `json:"name"`
	BoostType          string `json:"boost_type"`
	Priority           int    `json:"priority"`
	Points             int64  `json:"points"`
	BadgeText          string `json:"badge_text,omitempty"`
	DisplayToCustomers bool   `json:"display_to_customers"`
}

// Resolution 一次加成计算的完整结果
//
// FinalPoints = BasePoints + BoostPoints，恒不为负。
// Applied 按处理顺序排列，各项 Points 之和等于 BoostPoints。
type Resolution struct {
	BasePoints   int64          `json:"base_points"`
	BoostPoints  int64          `json:"boost_points"`
	FinalPoints  int64          `json:"final_points"`
	StackingMode string         `json:"stacking_mode,omitempty"`
	Exclusive    bool           `json:"exclusive"`
	Applied      []AppliedBoost `json:"applied"`
}

// BoostRefs 转换为台账流水的活动引用明细
func (r *Resolution) BoostRefs() models.BoostRefList {
	refs := make(models.BoostRefList, 0, len(r.Applied))
	for _, a := range r.Applied {
		refs = append(refs, models.BoostRef{
			CampaignID:  a.CampaignID,
			Name:        a.Name,
			BoostType:   a.BoostType,
			PointsAdded: a.Points,
		})
	}
	return refs
}

func (ctx OrderContext) at() time.Time {
	if ctx.Now.IsZero() {
		return time.Now()
	}
	return ctx.Now
}
