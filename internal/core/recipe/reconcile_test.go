package recipe

import (
	"testing"

	"fridge-chef/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMissingIngredients(t *testing.T) {
	required := []common.Ingredient{
		{Name: "Chicken Breast", Weight: "300g", Cost: "$6.00"},
		{Name: "Soy Sauce", Weight: "30ml", Cost: "$2.50"},
		{Name: "Garlic", Weight: "3 cloves", Cost: "$0.50"},
	}
	original := append([]common.Ingredient(nil), required...)

	missing := ExtractMissingIngredients(required, " CHICKEN , ,garlic")

	assert.Equal(t, []common.MissingIngredient{{Name: "Soy Sauce", Cost: "$2.50"}}, missing)
	assert.Equal(t, original, required)
}

func TestExtractMissingIngredientsEmptyInput(t *testing.T) {
	required := []common.Ingredient{
		{Name: "Rice", Cost: "$1.00"},
		{Name: "Egg", Cost: "$0.40"},
	}

	missing := ExtractMissingIngredients(required, " , ")
	require.Len(t, missing, 2)
	assert.Equal(t, "Rice", missing[0].Name)
	assert.Equal(t, "Egg", missing[1].Name)
}

func TestExtractMissingIngredientsSubstringMatch(t *testing.T) {
	required := []common.Ingredient{{Name: "Eggplant", Cost: "$2.00"}}

	assert.Empty(t, ExtractMissingIngredients(required, "egg"))
}

func TestExtractMissingIngredientsNeverNil(t *testing.T) {
	missing := ExtractMissingIngredients(nil, "rice")
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestAddLinks(t *testing.T) {
	m := common.MissingIngredient{Name: "Soy Sauce", Cost: "$2.50"}
	AddLinks(&m)

	assert.Equal(t, "https://www.fairprice.com.sg/search?query=Soy%20Sauce", m.NTUC)
	assert.Equal(t, "https://shengsiong.com.sg/search/Soy%20Sauce", m.ShengSiong)
	assert.Equal(t, "https://coldstorage.com.sg/en/search?keyword=Soy%20Sauce&page=1", m.ColdStorage)
	assert.True(t, m.HasLinks())
}

func TestAnnotateLinks(t *testing.T) {
	items := []common.MissingIngredient{{Name: "Basil"}, {Name: "Fish Sauce"}}
	AnnotateLinks(items)

	for _, m := range items {
		assert.True(t, m.HasLinks())
		assert.NotContains(t, m.NTUC, " ")
	}
	assert.Equal(t, "https://shengsiong.com.sg/search/Fish%20Sauce", items[1].ShengSiong)
}
