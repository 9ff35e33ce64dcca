package recipe

import (
	"fmt"
	"strings"

	"fridge-chef/internal/pkg/common"
)

// DietaryOptions 可選的飲食限制
var DietaryOptions = []string{
	"None",
	"Vegetarian",
	"Vegan",
	"Gluten-Free",
	"Halal",
	"Kosher",
	"Dairy-Free",
	"Nut-Free",
	"Pescatarian",
}

// FoodTypeOptions 可選的料理類型
var FoodTypeOptions = []string{
	"None",
	"Soup",
	"Noodles",
	"Rice",
	"Salad",
	"Dessert",
	"Sandwich",
	"Baked Goods",
	"One-Pot Meal",
}

const recipesPromptTemplate = `
Generate 3 unique recipes using these ingredients: %s. If needed, you can add other ingredients. For each ingredient, can you estimate the typical price range in Singapore dollars?
For each ingredient, add in the weight required as well.
Dietary Restrictions: %s.
Preferred Food Type: %s.
In the steps, add in numbers before the step. (e.g. 1. Wash the rice)

Return the response in **strict JSON format**:
{
    "recipes": [
        {
            "title": "Recipe Title 1",
            "ingredients": [
                {"name": "ingredient1", "weight": "100g", "cost": "$10.00"},
                {"name": "ingredient2", "weight": "200ml", "cost": "$10.00"}
            ],
            "steps": ["Step 1", "Step 2"]
        },
        {
            "title": "Recipe Title 2",
            "ingredients": [
                {"name": "ingredient1", "weight": "50g", "cost": "$15.00"},
                {"name": "ingredient2", "weight": "150ml", "cost": "$2.00"}
            ],
            "steps": ["Step 1", "Step 2"]
        },
        {
            "title": "Recipe Title 3",
            "ingredients": [
                {"name": "ingredient1", "weight": "50g", "cost": "$15.00"},
                {"name": "ingredient2", "weight": "150ml", "cost": "$2.00"}
            ],
            "steps": ["Step 1", "Step 2"]
        }
    ]
}
`

const nutritionPromptTemplate = `
Based on the following details, estimate the nutrition facts:

Recipe Title: %s
Ingredients: %s

Return the response in strict **JSON format**:
{
    "calories": "XXX kcal",
    "protein": "X g",
    "carbohydrates": "X g",
    "fat": "X g"
}
`

// BuildRecipesPrompt 產生三道食譜的 prompt
func BuildRecipesPrompt(ingredients, dietary, foodType string) string {
	return fmt.Sprintf(recipesPromptTemplate, ingredients, dietary, foodType)
}

// BuildNutritionPrompt 產生營養估算的 prompt
func BuildNutritionPrompt(r common.Recipe) string {
	return fmt.Sprintf(nutritionPromptTemplate, r.Title, common.FormatIngredientList(r.Ingredients))
}

// JoinIngredientSections 合併冰箱各區的輸入，略過空白區塊
func JoinIngredientSections(coldStorage, freezer, fridgeBody, other string) string {
	var parts []string
	for _, section := range []string{coldStorage, freezer, fridgeBody, other} {
		if s := strings.TrimSpace(section); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// ValidateDietary 驗證飲食限制，空值視為 None
func ValidateDietary(v string) (string, error) {
	return validateOption(v, DietaryOptions, "dietary")
}

// ValidateFoodType 驗證料理類型，空值視為 None
func ValidateFoodType(v string) (string, error) {
	return validateOption(v, FoodTypeOptions, "food_type")
}

func validateOption(v string, options []string, field string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "None", nil
	}
	for _, opt := range options {
		if strings.EqualFold(opt, v) {
			return opt, nil
		}
	}
	return "", common.NewValidationError(fmt.Sprintf("unsupported %s %q", field, v))
}
