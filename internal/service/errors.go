package service

import "errors"

// 活动相关错误
var (
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrCampaignNameRequired   = errors.New("campaign name required")
	ErrCampaignDateInvalid    = errors.New("campaign date range invalid")
	ErrCampaignBoostInvalid   = errors.New("campaign boost value invalid")
	ErrCampaignPriorityRange  = errors.New("campaign priority out of range")
	ErrCampaignStatusInvalid  = errors.New("campaign status transition invalid")
	ErrCampaignTimezoneBad    = errors.New("campaign timezone invalid")
	ErrCampaignTimeWindowBad  = errors.New("campaign time window invalid")
	ErrCampaignCreateFailed   = errors.New("campaign create failed")
	ErrCampaignUpdateFailed   = errors.New("campaign update failed")
	ErrCampaignUsageConflict  = errors.New("campaign usage conflict")
	ErrCampaignUsageExhausted = errors.New("campaign usage exhausted")
)

// 积分台账相关错误
var (
	ErrLoyaltyAccountNotFound    = errors.New("loyalty account not found")
	ErrLoyaltyInvalidPoints      = errors.New("loyalty points invalid")
	ErrLoyaltyInsufficientPoints = errors.New("loyalty points insufficient")
	ErrLoyaltyBelowMinRedemption = errors.New("loyalty redemption below minimum")
	ErrLoyaltyEntryCreateFailed  = errors.New("loyalty entry create failed")
	ErrLoyaltyAccountOutOfSync   = errors.New("loyalty account out of sync")
)

// 订单相关错误
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderItemsRequired = errors.New("order items required")
	ErrOrderStatusInvalid = errors.New("order status invalid")
	ErrOrderCreateFailed  = errors.New("order create failed")
	ErrOrderUpdateFailed  = errors.New("order update failed")
)

// 分类相关错误
var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameRequired = errors.New("category name required")
	ErrCategoryNameExists   = errors.New("category name exists")
)

// 标签相关错误
var (
	ErrTagNotFound     = errors.New("tag not found")
	ErrTagNameRequired = errors.New("tag name required")
	ErrTagNameExists   = errors.New("tag name exists")
	ErrTagInactive     = errors.New("tag inactive")
)

// 内容区块相关错误
var (
	ErrContentNotFound    = errors.New("content block not found")
	ErrContentLinkInvalid = errors.New("content link invalid")
	ErrContentTypeInvalid = errors.New("content banner type invalid")
)

// 库存日志相关错误
var (
	ErrStockLogActionInvalid = errors.New("stock log action invalid")
)
