package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fridge-chef/internal/core/ai/provider"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "fridge-chef:completion:"

// Service Redis 緩存服務
type Service struct {
	client *redis.Client
	cfg    config.CacheConfig
}

var _ Store = (*Service)(nil)

// NewService 創建 Redis 緩存服務並測試連線
func NewService(ctx context.Context, cfg config.CacheConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewServiceWithClient(client, cfg), nil
}

// NewServiceWithClient 使用既有的 Redis 客戶端
func NewServiceWithClient(client *redis.Client, cfg config.CacheConfig) *Service {
	return &Service{client: client, cfg: cfg}
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, prompt string) (*provider.Response, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+Key(prompt)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var resp provider.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	resp.CacheHit = true
	return &resp, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, prompt string, resp *provider.Response) error {
	if resp == nil {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+Key(prompt), data, s.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// Stats Redis 快取統計
func (s *Service) Stats() map[string]interface{} {
	stats := s.client.PoolStats()
	return map[string]interface{}{
		"driver":      "redis",
		"addr":        s.cfg.RedisAddr,
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"total_conns": stats.TotalConns,
	}
}

// Ping 檢查 Redis 連線
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *Service) Close() error {
	return s.client.Close()
}
