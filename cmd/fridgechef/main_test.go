package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fridge-chef/internal/core/pipeline"
	"fridge-chef/internal/pkg/common"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	result *pipeline.Result
	err    error
	got    pipeline.Request
}

func (f *fakeRunner) Run(ctx context.Context, req pipeline.Request, progress pipeline.ProgressFunc) (*pipeline.Result, error) {
	f.got = req
	if progress != nil {
		progress(pipeline.Progress{State: pipeline.StatePromptBuilt, Percent: 10, Message: "🧁 Whipping up something delicious..."})
		progress(pipeline.Progress{State: pipeline.StateComplete, Percent: 100, Message: pipeline.CompleteMessage})
	}
	return f.result, f.err
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		RunID:       "run-1",
		Ingredients: "chicken",
		Recipes: []pipeline.RecipeResult{{
			Index: 0,
			Recipe: common.Recipe{
				Title:     "Chicken Soup",
				Nutrition: &common.Nutrition{Calories: "350 kcal", Protein: "30 g", Carbohydrates: "10 g", Fat: "12 g"},
				MissingIngredients: []common.MissingIngredient{
					{Name: "Carrot", Cost: "$0.80", NTUC: "https://www.fairprice.com.sg/search?query=Carrot"},
				},
			},
			Document: &pipeline.Document{Path: "output/run-1/recipe_0.pdf"},
		}},
	}
}

func newFlagCmd(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	for _, name := range []string{"ingredients", "cold-storage", "freezer", "fridge-body", "other", "dietary", "food-type"} {
		cmd.Flags().String(name, "", "")
	}
	for k, v := range flags {
		require.NoError(t, cmd.Flags().Set(k, v))
	}
	return cmd
}

func TestRequestFromFlags(t *testing.T) {
	req := requestFromFlags(newFlagCmd(t, map[string]string{
		"freezer":     "prawns",
		"fridge-body": "cabbage, tofu",
		"food-type":   "Noodles",
	}))
	assert.Equal(t, "prawns, cabbage, tofu", req.Ingredients)
	assert.Equal(t, "Noodles", req.FoodType)

	req = requestFromFlags(newFlagCmd(t, map[string]string{
		"ingredients": "egg",
		"freezer":     "prawns",
	}))
	assert.Equal(t, "egg", req.Ingredients)
}

func TestRunGenerateSummary(t *testing.T) {
	var out, errOut bytes.Buffer
	r := &fakeRunner{result: sampleResult()}

	err := runGenerate(context.Background(), &out, &errOut, r, pipeline.Request{Ingredients: "chicken"}, false)
	require.NoError(t, err)

	assert.Contains(t, errOut.String(), "[ 10%]")
	assert.Contains(t, errOut.String(), pipeline.CompleteMessage)
	assert.Contains(t, out.String(), "🥣 Chicken Soup")
	assert.Contains(t, out.String(), "350 kcal")
	assert.Contains(t, out.String(), "Carrot ($0.80)")
	assert.Contains(t, out.String(), "output/run-1/recipe_0.pdf")
}

func TestRunGenerateJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	r := &fakeRunner{result: sampleResult()}

	require.NoError(t, runGenerate(context.Background(), &out, &errOut, r, pipeline.Request{Ingredients: "chicken"}, true))
	assert.Empty(t, errOut.String())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
}

func TestRunGenerateError(t *testing.T) {
	var out, errOut bytes.Buffer
	r := &fakeRunner{err: errors.New("boom")}

	err := runGenerate(context.Background(), &out, &errOut, r, pipeline.Request{Ingredients: "chicken"}, false)
	assert.EqualError(t, err, "boom")
}

func TestPrintSummaryParseFailure(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, &pipeline.Result{ParseFailed: true, ParseError: "bad json"})
	assert.Contains(t, out.String(), "bad json")

	out.Reset()
	printSummary(&out, &pipeline.Result{Recipes: []pipeline.RecipeResult{}})
	assert.Contains(t, out.String(), "No recipes")
}

func TestPrintOptions(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printOptions(&out, false))
	assert.Contains(t, out.String(), "Vegetarian")

	out.Reset()
	require.NoError(t, printOptions(&out, true))
	var decoded map[string][]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Contains(t, decoded["food_type"], "Soup")
}
