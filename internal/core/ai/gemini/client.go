package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fridge-chef/internal/core/ai/provider"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client Google Gemini 提供者
type Client struct {
	client *genai.Client
	cfg    config.GeminiConfig
}

var _ provider.Provider = (*Client)(nil)

// NewClient 創建 Gemini 客戶端，未設定 API Key 時回傳錯誤
func NewClient(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, cfg: cfg}, nil
}

// Name 提供者名稱
func (c *Client) Name() string { return "gemini" }

// GetModel 模型名稱
func (c *Client) GetModel() string { return c.cfg.Model }

// GetTimeout 請求超時
func (c *Client) GetTimeout() time.Duration { return c.cfg.Timeout }

// Generate 送出 prompt 並回傳所有文字片段的串接結果
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	model := c.client.GenerativeModel(c.cfg.Model)

	maxTokens := c.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	} else if c.cfg.Temperature > 0 {
		model.SetTemperature(c.cfg.Temperature)
	}
	if len(req.Stop) > 0 {
		model.StopSequences = req.Stop
	}

	var parts []genai.Part
	for _, msg := range req.Messages {
		if msg.Role == provider.RoleSystem {
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(msg.Content)}}
			continue
		}
		parts = append(parts, genai.Text(msg.Content))
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty prompt", common.ErrCompletionFailed)
	}

	common.LogDebug("Sending request to Gemini", zap.String("model", c.cfg.Model), zap.Int("parts", len(parts)))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini API call failed: %v", common.ErrCompletionFailed, err)
	}

	content := responseText(resp)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content in gemini response", common.ErrCompletionFailed)
	}

	result := &provider.Response{Content: content}
	if resp.UsageMetadata != nil {
		result.Usage = provider.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return result, nil
}

// Close 釋放連線
func (c *Client) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
