// Package lakecheck provides the public API for the conformance
// harness. It exposes the scenario matrix and suite entry points while
// keeping the driver, validator, and local binding internal.
//
// Implements: prd001-harness-core (public surface);
//
//	docs/ARCHITECTURE.md § Public API.
package lakecheck

import (
	"context"
	"log/slog"

	"github.com/mesh-intelligence/lakecheck/internal/harness"
	"github.com/mesh-intelligence/lakecheck/internal/localtab"
	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

// Version is the lakecheck release version.
const Version = "0.2.0"

// Patterns returns the location-pattern matrix of path-encoding edge
// cases.
func Patterns() []types.LocationPattern {
	return harness.Patterns()
}

// Scenarios returns the table-lifecycle scenario matrix: every pattern
// crossed with both partitioning flags.
func Scenarios() []types.Scenario {
	return harness.Scenarios()
}

// AllScenarios returns the full matrix across every lifecycle kind.
func AllScenarios() []types.Scenario {
	return harness.AllScenarios()
}

// Run executes the given scenarios against the supplied collaborators
// and returns every verdict. Scenario failures become verdicts; the
// error is non-nil only for setup failures or early cancellation.
//
// Example:
//
//	verdicts, err := lakecheck.Run(ctx, cfg, executor, lister, nil,
//	    lakecheck.AllScenarios())
func Run(ctx context.Context, cfg types.Config, exec types.Executor, lister types.ObjectLister, logger *slog.Logger, scenarios []types.Scenario) ([]types.Verdict, error) {
	runner, err := harness.NewRunner(cfg, exec, lister, logger)
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx, scenarios)
}

// RunLocal executes the given scenarios against the built-in local
// binding, attaching it under cfg.DataDir and detaching it before
// returning. Detach runs even when the run fails.
func RunLocal(ctx context.Context, cfg types.Config, logger *slog.Logger, scenarios []types.Scenario) ([]types.Verdict, error) {
	backend := localtab.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, err
	}
	defer backend.Detach()
	return Run(ctx, cfg, backend, backend, logger, scenarios)
}
