// platformsim runs the platformer simulation core without a window.
//
// Usage:
//
//	platformsim run        - Run the arena headless with a scripted input timeline
//	platformsim watch      - Run the arena live and hot-reload tuning and AI scripts
//	platformsim scenario   - Print the stress, stomp and patrol reference scenarios
//
// Global flags:
//
//	--log-level <level>  - debug, info, warn or error (default: info)
//	--seed <value>       - RNG seed (0 = seed from tuning.yaml)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagLogLevel string
	flagSeed     uint64
	flagArena    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "platformsim",
	Short: "Headless driver for the platformer simulation core",
	Long: `platformsim drives the platformer simulation core from the terminal.

Examples:
  platformsim run --ticks 1200 --script input_demo.yaml
  platformsim watch --log-level debug
  platformsim scenario`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "RNG seed (0 = seed from tuning.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagArena, "arena", "", "Arena spec (default from tuning.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(scenarioCmd)
}

func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "sim",
		Level:           level,
	}), nil
}
