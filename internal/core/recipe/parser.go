package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"fridge-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// ---------------- 寬鬆版中繼結構：數字或 null 也當成字串 ----------------

type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = looseString(str)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("expected string, got %s", data[:1])
	default:
		// 數字與布林保留原文
		*s = looseString(data)
	}
	return nil
}

type looseIngredient struct {
	Name   looseString `json:"name"`
	Weight looseString `json:"weight"`
	Cost   looseString `json:"cost"`
}

type looseRecipe struct {
	Title       looseString        `json:"title"`
	Ingredients []*looseIngredient `json:"ingredients"`
	Steps       []looseString      `json:"steps"`
}

type looseRecipeList struct {
	Recipes *[]*looseRecipe `json:"recipes"`
}

type looseNutrition struct {
	Calories      looseString `json:"calories"`
	Protein       looseString `json:"protein"`
	Carbohydrates looseString `json:"carbohydrates"`
	Fat           looseString `json:"fat"`
}

// ---------------------------------------------------------------

// ParseRecipes 解析食譜清單。失敗時回傳空切片與包裝 common.ErrCompletionParse 的錯誤；
// 合法但沒有食譜的回應回傳空切片與 nil，清單中的 null 會被略過
func ParseRecipes(raw string) ([]common.Recipe, error) {
	content := common.StripCodeFence(raw)

	var list looseRecipeList
	if err := common.ParseJSON(content, &list); err != nil {
		common.LogWarn("食譜 JSON 解析失敗", zap.Error(err), zap.Int("response_length", len(raw)))
		return []common.Recipe{}, fmt.Errorf("%w: %v", common.ErrCompletionParse, err)
	}
	if list.Recipes == nil {
		common.LogWarn("食譜 JSON 缺少 recipes 欄位")
		return []common.Recipe{}, fmt.Errorf("%w: missing \"recipes\" key", common.ErrCompletionParse)
	}

	recipes := make([]common.Recipe, 0, len(*list.Recipes))
	for i, lr := range *list.Recipes {
		// null 項目略過，不產生空白食譜
		if lr == nil {
			common.LogWarn("略過 null 食譜", zap.Int("index", i))
			continue
		}
		r := common.Recipe{
			Title:       strings.TrimSpace(string(lr.Title)),
			Ingredients: make([]common.Ingredient, 0, len(lr.Ingredients)),
			Steps:       make([]string, 0, len(lr.Steps)),
		}
		for _, ing := range lr.Ingredients {
			if ing == nil {
				continue
			}
			r.Ingredients = append(r.Ingredients, common.Ingredient{
				Name:   string(ing.Name),
				Weight: string(ing.Weight),
				Cost:   string(ing.Cost),
			})
		}
		for _, step := range lr.Steps {
			r.Steps = append(r.Steps, string(step))
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// ParseNutrition 解析營養資訊，失敗時回傳空的 Nutrition
func ParseNutrition(raw string) (common.Nutrition, error) {
	content := common.StripCodeFence(raw)

	var ln looseNutrition
	if err := common.ParseJSON(content, &ln); err != nil {
		common.LogWarn("營養 JSON 解析失敗", zap.Error(err), zap.Int("response_length", len(raw)))
		return common.Nutrition{}, fmt.Errorf("%w: %v", common.ErrCompletionParse, err)
	}

	return common.Nutrition{
		Calories:      string(ln.Calories),
		Protein:       string(ln.Protein),
		Carbohydrates: string(ln.Carbohydrates),
		Fat:           string(ln.Fat),
	}, nil
}
