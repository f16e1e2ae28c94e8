package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/outlierline/pkg/config"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "outlierline",
	Short: "NBA game outliers as a ranked bar timeline",
	Long: `outlierline turns the per-game outlier payload of the stats service
into ranked bar timelines: positive and negative deviations from
season averages, with headshots, team logos and formatted values.

Usage:
  go run ./cmd/outlierline [command]

Examples:
  go run ./cmd/outlierline serve
  go run ./cmd/outlierline games LAL
  go run ./cmd/outlierline render --team LAL --pinned
  go run ./cmd/outlierline watch --once`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig loads the environment and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
