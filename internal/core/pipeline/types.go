package pipeline

import (
	"context"
	"fmt"
	"strings"

	"fridge-chef/internal/core/recipe"
	"fridge-chef/internal/pkg/common"
)

// State 流程狀態
type State int

const (
	StateIdle State = iota
	StatePromptBuilt
	StateRecipesFetched
	StateEnriching
	StateComplete
)

var stateNames = map[State]string{
	StateIdle:           "idle",
	StatePromptBuilt:    "prompt_built",
	StateRecipesFetched: "recipes_fetched",
	StateEnriching:      "enriching",
	StateComplete:       "complete",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText JSON 中以名稱表示
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// 進度訊息
var loadingMessages = []string{
	"🧁 Whipping up something delicious...",
	"🥄 Gathering ingredients...",
	"🍳 Mixing the recipe...",
	"🎨 Adding some sparkles...",
	"✨ Making it extra cute...",
	"🌟 Almost ready...",
}

// CompleteMessage 完成時的訊息
const CompleteMessage = "🎊 Your recipes are ready! 🎉"

// Request 一次食譜生成的輸入
type Request struct {
	Ingredients string `json:"ingredients"`
	Dietary     string `json:"dietary"`
	FoodType    string `json:"food_type"`
}

// Normalize 驗證並正規化請求
func (r Request) Normalize() (Request, error) {
	r.Ingredients = strings.TrimSpace(r.Ingredients)
	if r.Ingredients == "" {
		return r, common.ErrNoIngredients
	}

	dietary, err := recipe.ValidateDietary(r.Dietary)
	if err != nil {
		return r, common.ErrInvalidOption.Wrap(err)
	}
	foodType, err := recipe.ValidateFoodType(r.FoodType)
	if err != nil {
		return r, common.ErrInvalidOption.Wrap(err)
	}
	r.Dietary = dietary
	r.FoodType = foodType
	return r, nil
}

// Progress 進度快照
type Progress struct {
	State   State  `json:"state"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
	Recipe  int    `json:"recipe"` // -1 表示與單一食譜無關
}

// ProgressFunc 接收進度，呼叫時持有鎖，不可阻塞
type ProgressFunc func(Progress)

// Document 產出的 PDF
type Document struct {
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}

// RecipeResult 單道食譜的結果，Document 為 nil 表示 PDF 產生失敗
type RecipeResult struct {
	Index    int           `json:"index"`
	Recipe   common.Recipe `json:"recipe"`
	HTML     string        `json:"html"`
	Document *Document     `json:"document"`
}

// Result 整次流程的結果
type Result struct {
	RunID       string         `json:"run_id"`
	Ingredients string         `json:"ingredients"`
	Dietary     string         `json:"dietary"`
	FoodType    string         `json:"food_type"`
	Recipes     []RecipeResult `json:"recipes"`
	ParseFailed bool           `json:"parse_failed"`
	ParseError  string         `json:"parse_error,omitempty"`
}

// RecipeSource 取得食譜與營養資訊
type RecipeSource interface {
	FetchRecipes(ctx context.Context, ingredients, dietary, foodType string) ([]common.Recipe, error)
	FetchNutrition(ctx context.Context, r common.Recipe) (common.Nutrition, error)
}

// Illustrator 產生食譜配圖
type Illustrator interface {
	Annotate(ctx context.Context, r *common.Recipe, dir string, index int)
}

// DocumentRenderer 產生 HTML 與 PDF
type DocumentRenderer interface {
	Fragment(r common.Recipe, forPDF bool) (string, error)
	WritePDF(ctx context.Context, r common.Recipe, outputPath string) (string, error)
}
