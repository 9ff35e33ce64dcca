package openrouter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fridge-chef/internal/core/ai/provider"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Client OpenRouter API 客戶端
type Client struct {
	client *resty.Client
	cfg    config.OpenRouterConfig
}

var _ provider.Provider = (*Client)(nil)

// Request 表示 API 請求
type Request struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
	Stop        []string           `json:"stop,omitempty"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string         `json:"id"`
	Choices []Choice       `json:"choices"`
	Usage   provider.Usage `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message provider.Message `json:"message"`
}

// APIError 表示 API 錯誤
type APIError struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg config.OpenRouterConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is not set")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", "https://fridge-chef.app").
		SetHeader("X-Title", "Fridge Chef")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{client: client, cfg: cfg}, nil
}

// Name 提供者名稱
func (c *Client) Name() string { return "openrouter" }

// GetModel 模型名稱
func (c *Client) GetModel() string { return c.cfg.Model }

// GetTimeout 請求超時
func (c *Client) GetTimeout() time.Duration { return c.cfg.Timeout }

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := Request{
		Model:       c.cfg.Model,
		Messages:    req.Messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", body.Model),
		zap.Int("messages", len(body.Messages)),
	)

	var result Response
	var apiErr APIError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request to OpenRouter: %v", common.ErrCompletionFailed, err)
	}

	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = truncate(resp.String(), 200)
		}
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", body.Model),
			zap.String("response", msg),
		)
		return nil, fmt.Errorf("%w: OpenRouter status %d: %s", common.ErrCompletionFailed, resp.StatusCode(), msg)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in OpenRouter response", common.ErrCompletionFailed)
	}
	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content in OpenRouter response", common.ErrCompletionFailed)
	}

	return &provider.Response{Content: content, Usage: result.Usage}, nil
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

// truncate 截斷過長的回應，避免日誌被塞爆
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
