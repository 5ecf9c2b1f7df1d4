// Version command for the lakecheck CLI.
// Implements: prd003-lakecheck-cli R3.4.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lakecheck/pkg/lakecheck"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lakecheck version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "lakecheck", lakecheck.Version)
	},
}
