package cache

import (
	"context"
	"time"

	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"
)

const campaignSnapshotKey = "campaign:active"

// CampaignCache 进行中活动的短 TTL 快照。
//
// 快照只用于只读的加成计算；落账路径始终直连数据库，
// 因此快照滞后不会造成超发，最多让刚变更的活动晚生效一个 TTL。
type CampaignCache struct {
	repo repository.CampaignRepository
	ttl  time.Duration
}

// NewCampaignCache 创建活动快照缓存
func NewCampaignCache(repo repository.CampaignRepository, ttl time.Duration) *CampaignCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CampaignCache{repo: repo, ttl: ttl}
}

// ActiveCampaigns 获取进行中活动，缓存未命中时回源并回填
func (c *CampaignCache) ActiveCampaigns() ([]models.Campaign, error) {
	ctx := context.Background()

	var cached []models.Campaign
	hit, err := GetJSON(ctx, campaignSnapshotKey, &cached)
	if err == nil && hit {
		return cached, nil
	}

	campaigns, err := c.repo.ListActive()
	if err != nil {
		return nil, err
	}
	_ = SetJSON(ctx, campaignSnapshotKey, campaigns, c.ttl)
	return campaigns, nil
}

// Invalidate 使活动快照失效（活动配置或状态变更后调用）
func (c *CampaignCache) Invalidate() error {
	return Del(context.Background(), campaignSnapshotKey)
}
