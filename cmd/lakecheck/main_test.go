package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCommandDoesNotEchoErrors verifies cobra stays quiet on
// command errors: main owns error reporting and the exit code, and a
// failed run has already rendered its verdict table.
func TestRootCommandDoesNotEchoErrors(t *testing.T) {
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"run", "--lifecycle", "bogus"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		flagLifecycle = "all"
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Empty(t, errOut.String(), "cobra must not print the error itself")
	assert.Empty(t, out.String())
}
