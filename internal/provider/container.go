package provider

import (
	"time"

	"github.com/loyalty-next/internal/cache"
	"github.com/loyalty-next/internal/config"
	"github.com/loyalty-next/internal/logger"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/queue"
	"github.com/loyalty-next/internal/repository"
	"github.com/loyalty-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	CampaignRepo      repository.CampaignRepository
	CampaignUsageRepo repository.CampaignUsageRepository
	LoyaltyRepo       repository.LoyaltyRepository
	OrderRepo         repository.OrderRepository
	CategoryRepo      repository.CategoryRepository
	TagRepo           repository.TagRepository
	SettingRepo       repository.SettingRepository
	StockLogRepo      repository.StockLogRepository
	ContentRepo       repository.ContentRepository

	// Services
	SettingService       *service.SettingService
	BoostService         *service.BoostService
	LoyaltyService       *service.LoyaltyService
	OrderService         *service.OrderService
	CampaignAdminService *service.CampaignAdminService
	CampaignScheduler    *service.CampaignScheduler
	CategoryService      *service.CategoryService
	TagService           *service.TagService
	ContentService       *service.ContentService
	StockLogService      *service.StockLogService
	CampaignCache        *cache.CampaignCache
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.CampaignRepo = repository.NewCampaignRepository(db)
	c.CampaignUsageRepo = repository.NewCampaignUsageRepository(db)
	c.LoyaltyRepo = repository.NewLoyaltyRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.TagRepo = repository.NewTagRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.StockLogRepo = repository.NewStockLogRepository(db)
	c.ContentRepo = repository.NewContentRepository(db)
}

func (c *Container) initServices() {
	c.SettingService = service.NewSettingService(c.SettingRepo)

	c.BoostService = service.NewBoostService(c.CampaignRepo, c.CampaignUsageRepo, c.TagRepo)
	if c.Config.Boost.RecordMaxRetries > 0 {
		c.BoostService.SetRecordMaxRetries(c.Config.Boost.RecordMaxRetries)
	}
	if cache.Enabled() {
		ttl := time.Duration(c.Config.Boost.CampaignCacheTTLSeconds) * time.Second
		c.CampaignCache = cache.NewCampaignCache(c.CampaignRepo, ttl)
		c.BoostService.SetCampaignSource(c.CampaignCache)
	}
	if c.QueueClient.Enabled() {
		qc := c.QueueClient
		c.BoostService.SetBudgetExhaustedHook(func(campaignID uint) {
			if err := qc.EnqueueCampaignAutoPause(queue.CampaignAutoPausePayload{CampaignID: campaignID}); err != nil {
				logger.Warnw("provider_enqueue_auto_pause_failed", "campaign_id", campaignID, "error", err)
			}
		})
	}

	c.LoyaltyService = service.NewLoyaltyService(c.LoyaltyRepo, c.SettingService)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.BoostService, c.LoyaltyService)
	c.CampaignAdminService = service.NewCampaignAdminService(c.CampaignRepo, c.CampaignUsageRepo)
	c.CampaignScheduler = service.NewCampaignScheduler(c.CampaignRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.TagService = service.NewTagService(c.TagRepo)
	c.ContentService = service.NewContentService(c.ContentRepo)
	c.StockLogService = service.NewStockLogService(c.StockLogRepo)
}
