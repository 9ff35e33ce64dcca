package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fridge-chef/internal/core/recipe"

	"github.com/spf13/cobra"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List dietary restrictions and food types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return printOptions(cmd.OutOrStdout(), jsonOutput)
	},
}

func init() {
	optionsCmd.Flags().Bool("json", false, "Output in JSON format")
}

func printOptions(w io.Writer, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string][]string{
			"dietary":   recipe.DietaryOptions,
			"food_type": recipe.FoodTypeOptions,
		})
	}
	fmt.Fprintf(w, "Dietary restrictions: %s\n", strings.Join(recipe.DietaryOptions, ", "))
	fmt.Fprintf(w, "Food types:           %s\n", strings.Join(recipe.FoodTypeOptions, ", "))
	return nil
}
