package recipe

import (
	"context"
	"fmt"
	"path/filepath"

	"fridge-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// ImageGenerator 文字轉圖片的外部服務
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, outputPath string) error
}

// Illustrator 為食譜產生配圖
type Illustrator struct {
	gen ImageGenerator
}

// NewIllustrator gen 為 nil 時停用配圖
func NewIllustrator(gen ImageGenerator) *Illustrator {
	return &Illustrator{gen: gen}
}

// ImagePrompt 食譜配圖的 prompt
func ImagePrompt(title string) string {
	return fmt.Sprintf("A delicious plate of %s", title)
}

// ImageFileName 第 index 道食譜的圖片檔名
func ImageFileName(index int) string {
	return fmt.Sprintf("recipe_image_%d.png", index)
}

// Annotate 產生圖片並設定 ImagePath，失敗時清空 ImagePath 但不中斷流程
func (i *Illustrator) Annotate(ctx context.Context, r *common.Recipe, dir string, index int) {
	r.ImagePath = ""
	if i == nil || i.gen == nil {
		return
	}

	outputPath := filepath.Join(dir, ImageFileName(index))
	if err := i.gen.Generate(ctx, ImagePrompt(r.Title), outputPath); err != nil {
		common.LogWarn("Error generating image",
			zap.String("title", r.Title),
			zap.Int("index", index),
			zap.Error(err),
		)
		return
	}
	r.ImagePath = outputPath
}
