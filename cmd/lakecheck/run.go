// Run command: execute the scenario matrix against the local binding.
// Implements: prd003-lakecheck-cli R3.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lakecheck/pkg/lakecheck"
	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the conformance scenario matrix against the local binding",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(flagConfigFile)
		if err != nil {
			return err
		}
		cfg := harnessConfig(v)

		scenarios, err := selectScenarios(flagLifecycle)
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		verdicts, err := lakecheck.RunLocal(cmd.Context(), cfg, logger, scenarios)
		if err != nil {
			return fmt.Errorf("running scenarios: %w", err)
		}

		if flagJSON {
			if err := renderJSON(cmd.OutOrStdout(), verdicts); err != nil {
				return err
			}
		} else {
			renderTable(cmd.OutOrStdout(), verdicts)
		}

		for _, verdict := range verdicts {
			if !verdict.Passed {
				return errFailedVerdicts
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&flagBucket, "bucket", "", "bucket name (overrides config)")
	runCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "per-scenario timeout (overrides config)")
	runCmd.Flags().IntVar(&flagParallel, "parallel", 0, "concurrent scenarios (overrides config)")
	runCmd.Flags().StringVar(&flagLifecycle, "lifecycle", "all", "lifecycle kind to run: table, schema, compaction, or all")
}

// selectScenarios resolves the --lifecycle flag into a scenario list.
func selectScenarios(lifecycle string) ([]types.Scenario, error) {
	if lifecycle == "" || lifecycle == "all" {
		return lakecheck.AllScenarios(), nil
	}
	kind := types.LifecycleKind(lifecycle)
	var out []types.Scenario
	for _, sc := range lakecheck.AllScenarios() {
		if sc.Lifecycle == kind {
			out = append(out, sc)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("unknown lifecycle %q", lifecycle)
	}
	return out, nil
}
