package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"

	"github.com/shopspring/decimal"
)

// 积分规则默认值
const (
	defaultPointsPerDollar     = 1.0
	defaultRedemptionRate      = 1000
	defaultMinRedemptionPoints = 500
	defaultRewardValuePerRate  = 5.0
)

// LoyaltySettings 积分规则配置
//
// RedemptionRate 积分兑换 RewardValuePerRate 金额，
// 如 1000 积分抵扣 5 元。
type LoyaltySettings struct {
	PointsPerDollar     decimal.Decimal `json:"points_per_dollar"`     // 每单位金额获得的基础积分
	RedemptionRate      int64           `json:"redemption_rate"`       // 兑换单位（积分）
	MinRedemptionPoints int64           `json:"min_redemption_points"` // 单次兑换最低积分
	RewardValuePerRate  models.Money    `json:"reward_value_per_rate"` // 每兑换单位对应的金额
}

// DefaultLoyaltySettings 返回默认积分规则
func DefaultLoyaltySettings() LoyaltySettings {
	return LoyaltySettings{
		PointsPerDollar:     decimal.NewFromFloat(defaultPointsPerDollar),
		RedemptionRate:      defaultRedemptionRate,
		MinRedemptionPoints: defaultMinRedemptionPoints,
		RewardValuePerRate:  models.NewMoneyFromFloat(defaultRewardValuePerRate),
	}
}

// SettingService 系统设置服务
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetByKey 获取设置值
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.Get(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update 写入设置值
func (s *SettingService) Update(key string, value map[string]interface{}) error {
	return s.repo.Upsert(&models.Setting{Key: key, ValueJSON: value})
}

// GetLoyaltySettings 获取积分规则（缺省字段合并默认值）
func (s *SettingService) GetLoyaltySettings() (LoyaltySettings, error) {
	result := DefaultLoyaltySettings()
	value, err := s.GetByKey(constants.SettingKeyLoyalty)
	if err != nil {
		return result, err
	}
	if value == nil {
		return result, nil
	}

	if raw, ok := value["points_per_dollar"]; ok {
		if parsed, err := parseSettingDecimal(raw); err == nil && parsed.GreaterThan(decimal.Zero) {
			result.PointsPerDollar = parsed
		}
	}
	if raw, ok := value["redemption_rate"]; ok {
		if parsed, err := parseSettingInt(raw); err == nil && parsed > 0 {
			result.RedemptionRate = int64(parsed)
		}
	}
	if raw, ok := value["min_redemption_points"]; ok {
		if parsed, err := parseSettingInt(raw); err == nil && parsed >= 0 {
			result.MinRedemptionPoints = int64(parsed)
		}
	}
	if raw, ok := value["reward_value_per_rate"]; ok {
		if parsed, err := parseSettingDecimal(raw); err == nil && parsed.GreaterThan(decimal.Zero) {
			result.RewardValuePerRate = models.NewMoneyFromDecimal(parsed)
		}
	}
	return result, nil
}

// UpdateLoyaltySettings 写入积分规则
func (s *SettingService) UpdateLoyaltySettings(settings LoyaltySettings) error {
	if settings.PointsPerDollar.LessThanOrEqual(decimal.Zero) ||
		settings.RedemptionRate <= 0 ||
		settings.MinRedemptionPoints < 0 ||
		settings.RewardValuePerRate.Decimal.LessThanOrEqual(decimal.Zero) {
		return ErrLoyaltyInvalidPoints
	}
	return s.Update(constants.SettingKeyLoyalty, map[string]interface{}{
		"points_per_dollar":     settings.PointsPerDollar.String(),
		"redemption_rate":       settings.RedemptionRate,
		"min_redemption_points": settings.MinRedemptionPoints,
		"reward_value_per_rate": settings.RewardValuePerRate.String(),
	})
}

func parseSettingInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		if f, err := v.Float64(); err == nil {
			return int(f), nil
		}
		return 0, fmt.Errorf("invalid json number")
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("empty string")
		}
		return strconv.Atoi(trimmed)
	default:
		return 0, fmt.Errorf("unsupported value type")
	}
}

func parseSettingDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Zero, fmt.Errorf("empty string")
		}
		return decimal.NewFromString(trimmed)
	default:
		return decimal.Zero, fmt.Errorf("unsupported value type")
	}
}
