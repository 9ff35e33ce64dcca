package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fridge-chef/internal/core/ai/cache"
	"fridge-chef/internal/core/ai/gemini"
	"fridge-chef/internal/core/ai/openrouter"
	"fridge-chef/internal/core/ai/provider"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// Service AI 服務：provider 加上可選的結果快取
type Service struct {
	provider provider.Provider
	cache    cache.Store
}

// New 以指定的 provider 與快取建立服務，store 可為 nil
func New(p provider.Provider, store cache.Store) *Service {
	return &Service{provider: p, cache: store}
}

// NewFromConfig 依設定建立 provider 與快取
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Service, error) {
	p, err := NewProvider(ctx, cfg.Completion)
	if err != nil {
		return nil, err
	}
	return New(p, NewCacheStore(ctx, cfg.Cache)), nil
}

// NewProvider 依 completion.provider 建立對應的提供者
func NewProvider(ctx context.Context, cfg config.CompletionConfig) (provider.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewClient(ctx, cfg.Gemini)
	case "openrouter":
		return openrouter.NewClient(cfg.OpenRouter)
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

// NewCacheStore 建立快取；停用時回傳 nil，Redis 連不上時退回記憶體快取
func NewCacheStore(ctx context.Context, cfg config.CacheConfig) cache.Store {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil
	}
	if cfg.Driver == "redis" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		svc, err := cache.NewService(pingCtx, cfg)
		if err == nil {
			common.LogInfo("使用 Redis 快取", zap.String("addr", cfg.RedisAddr))
			return svc
		}
		common.LogWarn("Redis 無法連線，改用記憶體快取", zap.Error(err))
	}
	return cache.NewManager(cfg)
}

// normalizePrompt 合併空白，確保快取 key 一致
func normalizePrompt(prompt string) string {
	return strings.Join(strings.Fields(prompt), " ")
}

// ProcessRequest 統一對外方法，cacheable 為 false 時略過快取
func (s *Service) ProcessRequest(ctx context.Context, prompt string, cacheable bool) (*provider.Response, error) {
	key := normalizePrompt(prompt)
	useCache := cacheable && s.cache != nil

	if useCache {
		resp, err := s.cache.Get(ctx, key)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, provider.UserPrompt(prompt))
	common.LogAICall(s.provider.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := s.cache.Set(ctx, key, resp); err != nil {
			common.LogWarn("寫入快取失敗", zap.Error(err))
		}
	}

	return resp, nil
}

// Complete 回傳純文字結果
func (s *Service) Complete(ctx context.Context, prompt string, cacheable bool) (string, error) {
	resp, err := s.ProcessRequest(ctx, prompt, cacheable)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Provider 目前使用的提供者
func (s *Service) Provider() provider.Provider {
	return s.provider
}

// CacheStats 快取統計，未啟用時回傳 nil
func (s *Service) CacheStats() map[string]interface{} {
	if s.cache == nil {
		return nil
	}
	return s.cache.Stats()
}

// Close 關閉 provider 與快取
func (s *Service) Close() error {
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	if s.provider != nil {
		errs = append(errs, s.provider.Close())
	}
	return errors.Join(errs...)
}

// Ping 檢查快取連線，不支援的快取視為正常
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.cache.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
