package recipe

import (
	"strings"

	"fridge-chef/internal/pkg/common"
)

// 商店搜尋連結
const (
	ntucSearchURL        = "https://www.fairprice.com.sg/search?query=%s"
	shengSiongSearchURL  = "https://shengsiong.com.sg/search/%s"
	coldStorageSearchURL = "https://coldstorage.com.sg/en/search?keyword=%s&page=1"
)

// ExtractMissingIngredients 找出使用者尚未擁有的食材。
// 只要任一輸入詞是食材名稱的子字串即視為已有（"egg" 也會命中 "eggplant"）
func ExtractMissingIngredients(required []common.Ingredient, userInput string) []common.MissingIngredient {
	var tokens []string
	for _, tok := range strings.Split(userInput, ",") {
		if tok = strings.ToLower(strings.TrimSpace(tok)); tok != "" {
			tokens = append(tokens, tok)
		}
	}

	missing := make([]common.MissingIngredient, 0, len(required))
	for _, ing := range required {
		name := strings.ToLower(ing.Name)
		onHand := false
		for _, tok := range tokens {
			if strings.Contains(name, tok) {
				onHand = true
				break
			}
		}
		if !onHand {
			missing = append(missing, common.MissingIngredient{Name: ing.Name, Cost: ing.Cost})
		}
	}
	return missing
}

func searchURL(template, name string) string {
	return strings.ReplaceAll(strings.Replace(template, "%s", name, 1), " ", "%20")
}

// AddLinks 附加三家商店的搜尋連結
func AddLinks(m *common.MissingIngredient) {
	m.NTUC = searchURL(ntucSearchURL, m.Name)
	m.ShengSiong = searchURL(shengSiongSearchURL, m.Name)
	m.ColdStorage = searchURL(coldStorageSearchURL, m.Name)
}

// AnnotateLinks 為整份清單附加連結
func AnnotateLinks(items []common.MissingIngredient) {
	for i := range items {
		AddLinks(&items[i])
	}
}
