package recipe

import (
	"context"
	"fmt"

	"fridge-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 食譜服務：呼叫文字生成並解析結果
type Service struct {
	completer Completer
}

// NewService 創建新的食譜服務
func NewService(completer Completer) *Service {
	return &Service{completer: completer}
}

// FetchRecipes 取得三道食譜。
// 呼叫失敗時錯誤包裝 common.ErrCompletionFailed，解析失敗時包裝 common.ErrCompletionParse，
// 兩種情況都回傳空切片
func (s *Service) FetchRecipes(ctx context.Context, ingredients, dietary, foodType string) ([]common.Recipe, error) {
	prompt := BuildRecipesPrompt(ingredients, dietary, foodType)
	common.LogDebug("FetchRecipes 組裝的 prompt", zap.Int("length", len(prompt)))

	raw, err := s.completer.Complete(ctx, prompt, false)
	if err != nil {
		return []common.Recipe{}, fmt.Errorf("fetch recipes: %w", err)
	}

	recipes, err := ParseRecipes(raw)
	if err != nil {
		return recipes, err
	}

	common.LogInfo("Recipes generated successfully", zap.Int("count", len(recipes)))
	return recipes, nil
}

// FetchNutrition 估算營養資訊，任何失敗都回傳空的 Nutrition 與錯誤
func (s *Service) FetchNutrition(ctx context.Context, r common.Recipe) (common.Nutrition, error) {
	raw, err := s.completer.Complete(ctx, BuildNutritionPrompt(r), true)
	if err != nil {
		return common.Nutrition{}, fmt.Errorf("fetch nutrition: %w", err)
	}
	return ParseNutrition(raw)
}
