package document

import "strings"

// DefaultEmoji 沒有符合關鍵字時使用
const DefaultEmoji = "🍽️"

// 依序比對，先命中者優先
var emojiTable = []struct {
	keyword string
	emoji   string
}{
	{"soup", "🥣"},
	{"noodle", "🍜"},
	{"rice", "🍚"},
	{"salad", "🥗"},
	{"dessert", "🍰"},
	{"cake", "🍰"},
	{"bread", "🍞"},
	{"pizza", "🍕"},
	{"chicken", "🍗"},
	{"meat", "🥩"},
}

// FoodEmoji 依食譜標題挑選 emoji
func FoodEmoji(title string) string {
	lower := strings.ToLower(title)
	for _, e := range emojiTable {
		if strings.Contains(lower, e.keyword) {
			return e.emoji
		}
	}
	return DefaultEmoji
}
