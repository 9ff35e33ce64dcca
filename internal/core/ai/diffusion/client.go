package diffusion

import (
	"context"
	"fmt"
	"time"

	"fridge-chef/internal/core/image"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client Stable Diffusion WebUI txt2img 客戶端
type Client struct {
	client   *resty.Client
	cfg      config.ImageGenConfig
	imageSvc *image.Service
}

// txt2imgRequest txt2img 請求
type txt2imgRequest struct {
	Prompt   string  `json:"prompt"`
	Steps    int     `json:"steps"`
	CFGScale float64 `json:"cfg_scale"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
}

// txt2imgResponse txt2img 響應，images 為 base64 PNG
type txt2imgResponse struct {
	Images []string `json:"images"`
}

// NewClient 創建 txt2img 客戶端
func NewClient(cfg config.ImageGenConfig, imageSvc *image.Service) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.Steps <= 0 {
		cfg.Steps = 20
	}
	if cfg.CFGScale <= 0 {
		cfg.CFGScale = 7.5
	}

	return &Client{client: client, cfg: cfg, imageSvc: imageSvc}
}

// Generate 依 prompt 產生圖片並寫入 outputPath
func (c *Client) Generate(ctx context.Context, prompt, outputPath string) error {
	start := time.Now()

	var result txt2imgResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(txt2imgRequest{
			Prompt:   prompt,
			Steps:    c.cfg.Steps,
			CFGScale: c.cfg.CFGScale,
			Width:    c.cfg.Width,
			Height:   c.cfg.Height,
		}).
		SetResult(&result).
		Post("/sdapi/v1/txt2img")
	if err != nil {
		return fmt.Errorf("%w: txt2img request failed: %v", common.ErrImageGeneration, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: txt2img status %d", common.ErrImageGeneration, resp.StatusCode())
	}
	if len(result.Images) == 0 {
		return fmt.Errorf("%w: txt2img returned no images", common.ErrImageGeneration)
	}

	if err := c.imageSvc.SaveBase64AsPNG(result.Images[0], outputPath); err != nil {
		return fmt.Errorf("%w: %v", common.ErrImageGeneration, err)
	}

	common.LogDebug("圖片生成完成",
		zap.String("path", outputPath),
		zap.Duration("耗時", time.Since(start)),
	)
	return nil
}

// Ping 檢查 WebUI 是否可用
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/sdapi/v1/options")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("stable diffusion status %d", resp.StatusCode())
	}
	return nil
}
