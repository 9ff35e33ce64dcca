package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"fridge-chef/internal/app"
	"fridge-chef/internal/core/document"
	"fridge-chef/internal/core/pipeline"
	"fridge-chef/internal/core/recipe"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate recipes from your ingredients",
	Long: `Generate three recipes from the ingredients you have.

Ingredients can be given as one list or per fridge section.

Examples:
  fridgechef generate --ingredients "chicken, rice, egg"
  fridgechef generate --freezer "prawns" --fridge-body "cabbage, tofu" --food-type Noodles
  fridgechef generate --ingredients "tomato" --dietary Vegan --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := requestFromFlags(cmd)
		jsonOutput, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.Build(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		return runGenerate(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), a.Orchestrator, req, jsonOutput)
	},
}

func init() {
	f := generateCmd.Flags()
	f.String("ingredients", "", "Comma separated ingredients you have")
	f.String("cold-storage", "", "Ingredients in the cold storage section")
	f.String("freezer", "", "Ingredients in the freezer")
	f.String("fridge-body", "", "Ingredients in the fridge body")
	f.String("other", "", "Other ingredients")
	f.String("dietary", "None", "Dietary restriction (see 'fridgechef options')")
	f.String("food-type", "None", "Food type (see 'fridgechef options')")
	f.Bool("json", false, "Output the result in JSON format")
}

// requestFromFlags --ingredients 優先，否則合併冰箱各區
func requestFromFlags(cmd *cobra.Command) pipeline.Request {
	flag := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}

	ingredients := strings.TrimSpace(flag("ingredients"))
	if ingredients == "" {
		ingredients = recipe.JoinIngredientSections(flag("cold-storage"), flag("freezer"), flag("fridge-body"), flag("other"))
	}
	return pipeline.Request{
		Ingredients: ingredients,
		Dietary:     flag("dietary"),
		FoodType:    flag("food-type"),
	}
}

type runner interface {
	Run(ctx context.Context, req pipeline.Request, progress pipeline.ProgressFunc) (*pipeline.Result, error)
}

func runGenerate(ctx context.Context, out, errOut io.Writer, r runner, req pipeline.Request, jsonOutput bool) error {
	var progress pipeline.ProgressFunc
	if !jsonOutput {
		progress = func(p pipeline.Progress) {
			fmt.Fprintf(errOut, "[%3d%%] %s\n", p.Percent, p.Message)
		}
	}

	result, err := r.Run(ctx, req, progress)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printSummary(out, result)
	return nil
}

func printSummary(w io.Writer, result *pipeline.Result) {
	if result.ParseFailed {
		fmt.Fprintf(w, "Could not read recipes from the model response: %s\n", result.ParseError)
		return
	}
	if len(result.Recipes) == 0 {
		fmt.Fprintln(w, "No recipes were suggested.")
		return
	}

	for _, rr := range result.Recipes {
		r := rr.Recipe
		fmt.Fprintf(w, "\n%s %s\n", document.FoodEmoji(r.Title), r.Title)

		if r.Nutrition != nil && !r.Nutrition.IsEmpty() {
			fmt.Fprintf(w, "  Nutrition: %s, protein %s, carbs %s, fat %s\n",
				r.Nutrition.Calories, r.Nutrition.Protein, r.Nutrition.Carbohydrates, r.Nutrition.Fat)
		}

		if len(r.MissingIngredients) > 0 {
			fmt.Fprintln(w, "  Missing ingredients:")
			for _, m := range r.MissingIngredients {
				fmt.Fprintf(w, "    - %s (%s) %s\n", m.Name, m.Cost, m.NTUC)
			}
		}

		if r.ImagePath != "" {
			fmt.Fprintf(w, "  Image: %s\n", r.ImagePath)
		}
		if rr.Document != nil {
			fmt.Fprintf(w, "  PDF:   %s\n", rr.Document.Path)
		} else {
			fmt.Fprintln(w, "  PDF:   not generated")
		}
	}
}
