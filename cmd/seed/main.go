package main

import (
	"fmt"
	"time"

	"github.com/loyalty-next/internal/config"
	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/logger"
	"github.com/loyalty-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{
			Name:            "Electronics",
			Slug:            "electronics",
			Status:          constants.StatusActive,
			MetaTitle:       "Electronics",
			MetaDescription: "Audio, wearables and smart devices",
			AddedBy:         "seed",
		},
		{
			Name:            "Lifestyle",
			Slug:            "lifestyle",
			Status:          constants.StatusActive,
			MetaTitle:       "Lifestyle",
			MetaDescription: "Everyday essentials",
			AddedBy:         "seed",
		},
		{
			Name:            "Accessories",
			Slug:            "accessories",
			Status:          constants.StatusActive,
			MetaTitle:       "Accessories",
			MetaDescription: "Chargers, cables and more",
			AddedBy:         "seed",
		},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"electronics", "lifestyle", "accessories"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}
	electronicsID := categoryIDs["electronics"]

	// 添加客户标签
	tags := []models.Tag{
		{
			Name:        "vip",
			DisplayName: "VIP",
			Description: "高价值客户，参与专属加成活动",
			Category:    constants.TagCategoryEngagement,
			Color:       "#F59E0B",
			IsActive:    true,
			CreatedBy:   "seed",
		},
		{
			Name:        "new-customer",
			DisplayName: "New Customer",
			Description: "注册 30 天内的新客户",
			Category:    constants.TagCategoryBehavior,
			Color:       "#10B981",
			IsActive:    true,
			CreatedBy:   "seed",
		},
		{
			Name:        "audio-fan",
			DisplayName: "Audio Fan",
			Description: "偏好音频类商品的客户",
			Category:    constants.TagCategoryPreference,
			IsActive:    true,
			CreatedBy:   "seed",
		},
	}

	for _, tag := range tags {
		var existing models.Tag
		if err := models.DB.Where("name = ?", tag.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&tag).Error; err != nil {
				stdLog.Printf("Failed to create tag %s: %v", tag.Name, err)
			} else {
				stdLog.Printf("Created tag: %s", tag.Name)
			}
		} else {
			stdLog.Printf("Tag already exists: %s", tag.Name)
		}
	}

	vipTagID := uint(0)
	var vipTag models.Tag
	if err := models.DB.Where("name = ?", "vip").First(&vipTag).Error; err == nil {
		vipTagID = vipTag.ID
	}

	// 添加加成活动：覆盖三种加成类型与三种叠加模式
	today := time.Now().UTC()
	seasonStart := today.AddDate(0, 0, -7).Format("2006-01-02")
	seasonEnd := today.AddDate(0, 2, 0).Format("2006-01-02")
	flashStart := today.Format("2006-01-02")
	flashEnd := today.AddDate(0, 0, 14).Format("2006-01-02")

	campaigns := []models.Campaign{
		{
			Name:               "Double Points Season",
			Description:        "全场双倍积分，可与其他活动叠加",
			Status:             constants.CampaignStatusActive,
			StartDate:          seasonStart,
			EndDate:            seasonEnd,
			Timezone:           "UTC",
			BoostType:          constants.BoostTypeMultiplier,
			Multiplier:         decimal.NewFromFloat(2.0),
			AllowStacking:      true,
			Priority:           8,
			StackingMode:       constants.StackingModeMultiplicative,
			ResetPeriod:        constants.ResetPeriodNone,
			DisplayToCustomers: true,
			BadgeText:          "2X POINTS",
			CreatedBy:          "seed",
		},
		{
			Name:                 "Weekend Electronics Boost",
			Description:          "周末电子产品 1.5 倍积分，单笔最多加成 500 分",
			Status:               constants.CampaignStatusActive,
			StartDate:            seasonStart,
			EndDate:              seasonEnd,
			Timezone:             "UTC",
			DaysOfWeek:           models.IntList{0, 6},
			CategoriesEnabled:    true,
			CategoryIDs:          models.IDList{electronicsID},
			BoostType:            constants.BoostTypeMultiplier,
			Multiplier:           decimal.NewFromFloat(1.5),
			MaxPointsPerOrder:    500,
			MaxPointsPerCustomer: 2000,
			ResetPeriod:          constants.ResetPeriodWeekly,
			AllowStacking:        true,
			Priority:             6,
			StackingMode:         constants.StackingModeMultiplicative,
			DisplayToCustomers:   true,
			BadgeText:            "WEEKEND 1.5X",
			CreatedBy:            "seed",
		},
		{
			Name:                "VIP Extra 200",
			Description:         "VIP 客户每单额外 200 积分",
			Status:              constants.CampaignStatusActive,
			StartDate:           seasonStart,
			EndDate:             seasonEnd,
			Timezone:            "UTC",
			CustomerTagsEnabled: true,
			TagIDs:              models.IDList{vipTagID},
			BoostType:           constants.BoostTypeFixedExtra,
			FixedPoints:         200,
			MaxUsesPerCustomer:  10,
			ResetPeriod:         constants.ResetPeriodNone,
			AllowStacking:       true,
			Priority:            5,
			StackingMode:        constants.StackingModeAdditive,
			DisplayToCustomers:  true,
			BadgeText:           "VIP +200",
			CreatedBy:           "seed",
		},
		{
			Name:                 "Flash Triple Rate",
			Description:          "限时按 3 倍积分率替换基础积分，独占不叠加，带全局预算",
			Status:               constants.CampaignStatusDraft,
			StartDate:            flashStart,
			EndDate:              flashEnd,
			Timezone:             "Asia/Kolkata",
			TimeWindowEnabled:    true,
			TimeWindowStart:      "18:00",
			TimeWindowEnd:        "22:00",
			OrderCriteriaEnabled: true,
			MinOrderValue:        models.NewMoneyFromFloat(50),
			BoostType:            constants.BoostTypeReplaceBase,
			ReplacementRate:      decimal.NewFromFloat(3.0),
			GlobalLimitEnabled:   true,
			MaxTotalPoints:       100000,
			MaxTotalUses:         1000,
			ResetPeriod:          constants.ResetPeriodNone,
			AllowStacking:        false,
			Priority:             9,
			StackingMode:         constants.StackingModeHighestOnly,
			DisplayToCustomers:   true,
			BadgeText:            "3X RATE",
			CreatedBy:            "seed",
		},
	}

	for _, campaign := range campaigns {
		var existing models.Campaign
		if err := models.DB.Where("name = ?", campaign.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&campaign).Error; err != nil {
				stdLog.Printf("Failed to create campaign %s: %v", campaign.Name, err)
			} else {
				stdLog.Printf("Created campaign: %s (%s)", campaign.Name, campaign.Status)
			}
		} else {
			stdLog.Printf("Campaign already exists: %s", campaign.Name)
		}
	}

	// 写入积分规则配置
	loyaltyConfig := models.JSON(map[string]interface{}{
		"points_per_dollar":     "1",
		"redemption_rate":       int64(1000),
		"min_redemption_points": int64(500),
		"reward_value_per_rate": "5",
	})

	var setting models.Setting
	if err := models.DB.Where("key = ?", constants.SettingKeyLoyalty).First(&setting).Error; err != nil {
		// 不存在则创建
		setting = models.Setting{
			Key:       constants.SettingKeyLoyalty,
			ValueJSON: loyaltyConfig,
		}
		if err := models.DB.Create(&setting).Error; err != nil {
			stdLog.Printf("Failed to create loyalty settings: %v", err)
		} else {
			stdLog.Println("Created loyalty settings")
		}
	} else {
		stdLog.Println("Loyalty settings already exist")
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 3 Customer tags")
	fmt.Println("- 4 Boost campaigns (multiplier x2, fixed_extra, replace_base)")
	fmt.Println("- Loyalty settings")
}
