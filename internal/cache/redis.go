package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/loyalty-next/internal/config"
	"github.com/loyalty-next/internal/logger"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "loyalty"

var (
	client    *redis.Client
	keyPrefix string
	enabled   bool
)

// InitRedis 初始化 Redis 客户端。未启用时全部缓存操作退化为空操作。
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		enabled = false
		return nil
	}
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	keyPrefix = strings.TrimSpace(cfg.Prefix)
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}

	client = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", addr, port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	enabled = true

	// 连通性探测失败不阻断启动，读写时再走降级路径
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warnw("cache_redis_ping_failed", "addr", addr, "port", port, "error", err)
	}
	return nil
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return enabled && client != nil
}

// Client 获取 Redis 客户端，未启用时返回 nil
func Client() *redis.Client {
	if !Enabled() {
		return nil
	}
	return client
}

// GetJSON 读取并反序列化缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	val, err := client.Get(ctx, cacheKey(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 序列化并写入缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, cacheKey(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return client.Del(ctx, cacheKey(key)).Err()
}

func cacheKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return keyPrefix
	}
	return keyPrefix + ":" + trimmed
}
