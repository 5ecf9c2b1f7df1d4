// Package main provides the lakecheck CLI.
// Implements: prd003-lakecheck-cli (R1 command structure, R4 exit
// codes); docs/ARCHITECTURE.md § CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes (prd003-lakecheck-cli R4).
const (
	exitSuccess  = 0
	exitFailed   = 1
	exitSysError = 2
)

// errFailedVerdicts signals that the run completed but at least one
// verdict failed.
var errFailedVerdicts = errors.New("one or more scenarios failed")

// Global flag values.
var (
	flagConfigFile string
	flagJSON       bool
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "lakecheck",
	Short: "Lakecheck verifies storage-backed tables against file-set invariants",
	Long: `Lakecheck drives storage-backed tables through their full lifecycle
under adversarial location-path encodings (trailing slashes, doubled
slashes, percent characters, whitespace) and validates that object
storage reflects the expected file-set invariants at every stage.`,
	// Errors are reported by main with the right exit code; a failed run
	// already rendered its verdicts, so cobra must not echo the sentinel.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (default: ./lakecheck.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenariosCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errFailedVerdicts) {
			os.Exit(exitFailed)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitSysError)
	}
	os.Exit(exitSuccess)
}
