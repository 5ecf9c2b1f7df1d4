// Scenarios command: print the scenario matrix.
// Implements: prd003-lakecheck-cli R3.3.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lakecheck/pkg/lakecheck"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Print the conformance scenario matrix",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scenarios := lakecheck.AllScenarios()
		if flagJSON {
			return renderJSONValue(cmd.OutOrStdout(), scenarios)
		}
		for _, sc := range scenarios {
			fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", sc.Name(), sc.Pattern.Template)
		}
		return nil
	},
}
