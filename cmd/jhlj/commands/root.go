package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jhlj",
	Short: "JHLJ - Jensen Huang 가죽자켓 대체데이터 인덱스",
	Long: `Jensen Huang Leather Jacket Index Unified CLI

Grailed 가죽자켓 매물을 수집해 Jensen-coded 점수를 매기고,
NVDA 종가와 나란히 놓아 일별 인덱스를 만듭니다.

Usage:
  go run ./cmd/jhlj [command]

Examples:
  go run ./cmd/jhlj api
  go run ./cmd/jhlj scrape
  go run ./cmd/jhlj quotes backfill --days 365
  go run ./cmd/jhlj report
  go run ./cmd/jhlj test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
