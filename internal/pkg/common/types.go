package common

import (
	"fmt"
	"strings"
)

// Ingredient 食譜所需食材
type Ingredient struct {
	Name   string `json:"name"`
	Weight string `json:"weight"` // 例如 "100g"
	Cost   string `json:"cost"`   // 例如 "$3.00"
}

// MissingIngredient 需要購買的食材（含商店搜尋連結）
type MissingIngredient struct {
	Name        string `json:"name"`
	Cost        string `json:"cost"`
	NTUC        string `json:"ntuc,omitempty"`
	ShengSiong  string `json:"shengsiong,omitempty"`
	ColdStorage string `json:"coldstorage,omitempty"`
}

// HasLinks 是否已附加商店連結
func (m MissingIngredient) HasLinks() bool {
	return m.NTUC != "" && m.ShengSiong != "" && m.ColdStorage != ""
}

// Nutrition 營養資訊，所有欄位皆為自由格式字串
type Nutrition struct {
	Calories      string `json:"calories"`
	Protein       string `json:"protein"`
	Carbohydrates string `json:"carbohydrates"`
	Fat           string `json:"fat"`
}

// IsEmpty 是否為空的營養資訊（解析失敗時的預設值）
func (n Nutrition) IsEmpty() bool {
	return n.Calories == "" && n.Protein == "" && n.Carbohydrates == "" && n.Fat == ""
}

// Recipe 食譜
// ImagePath 為空代表圖片生成失敗；Nutrition 為 nil 代表尚未取得營養資訊；
// MissingIngredients 為 nil 代表尚未比對食材
type Recipe struct {
	Title              string              `json:"title"`
	Ingredients        []Ingredient        `json:"ingredients"`
	Steps              []string            `json:"steps"`
	ImagePath          string              `json:"image_path,omitempty"`
	ImageURL           string              `json:"image_url,omitempty"`
	Nutrition          *Nutrition          `json:"nutrition"`
	MissingIngredients []MissingIngredient `json:"missing_ingredients"`
}

// HasImage 是否有圖片
func (r Recipe) HasImage() bool {
	return r.ImagePath != ""
}

// FormatIngredientList 將食材格式化為 HTML 清單項目（營養估算 prompt 使用）
func FormatIngredientList(ingredients []Ingredient) string {
	var sb strings.Builder
	for _, ing := range ingredients {
		sb.WriteString(fmt.Sprintf("<li>%s - %s</li>", ing.Name, ing.Weight))
	}
	return sb.String()
}
