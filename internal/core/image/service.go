package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG

	_ "golang.org/x/image/webp" // 支援 WebP
)

// Service 圖片處理服務
type Service struct {
	maxSizeBytes int64
}

// NewService 創建新的圖片處理服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{maxSizeBytes: maxSizeBytes}
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"jpg":  true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}

// DecodeBase64 解碼 base64 圖片，接受純 base64 或 data:image/...;base64, 格式
func (s *Service) DecodeBase64(imageData string) ([]byte, error) {
	data := strings.TrimSpace(imageData)
	if strings.HasPrefix(data, "data:image/") {
		parts := strings.SplitN(data, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid base64 data format")
		}
		data = parts[1]
	}
	if data == "" {
		return nil, fmt.Errorf("empty image data")
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %w", err)
	}
	return decoded, nil
}

// Validate 驗證圖片大小與格式，回傳解碼後的圖片
func (s *Service) Validate(data []byte) (image.Image, string, error) {
	if s.maxSizeBytes > 0 && int64(len(data)) > s.maxSizeBytes {
		return nil, "", fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	if !isSupportedFormat(format) {
		return nil, "", fmt.Errorf("unsupported image format: %s", format)
	}

	return img, format, nil
}

// SavePNG 以 PNG 格式寫入檔案
func (s *Service) SavePNG(img image.Image, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode image as PNG: %w", err)
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// SaveBase64AsPNG 解碼、驗證 base64 圖片並存成 PNG
func (s *Service) SaveBase64AsPNG(imageData, outputPath string) error {
	data, err := s.DecodeBase64(imageData)
	if err != nil {
		return err
	}
	img, _, err := s.Validate(data)
	if err != nil {
		return err
	}
	return s.SavePNG(img, outputPath)
}
