package main

import (
	"fmt"
	"os"

	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version of fridgechef
	Version = "1.0.0"

	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "fridgechef",
	Short: "Turn the contents of your fridge into recipes",
	Long: `fridgechef suggests recipes from the ingredients you already have.

Each recipe is enriched with an illustration, nutrition facts, a list of
missing ingredients with grocery links, and a printable PDF.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Write debug logs to stderr")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(optionsCmd)
}

// loadConfig 載入設定並初始化 logger，非 verbose 模式只記錄警告以上
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if verboseFlag {
		level = "debug"
	}
	if err := common.InitLogger(level, ""); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	defer common.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
