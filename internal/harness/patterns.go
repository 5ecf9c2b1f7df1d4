// Package harness drives storage-backed tables through their full
// lifecycle under adversarial location-path encodings and validates that
// object storage reflects the expected file-set invariants at every
// stage.
// Implements: prd001-harness-core (patterns, codec, driver, validator,
// runner); docs/ARCHITECTURE.md § Harness.
package harness

import "github.com/mesh-intelligence/lakecheck/pkg/types"

// locationPatterns is the fixed matrix of path-encoding edge cases a
// storage-backed table implementation must tolerate. Each template has
// three slots: bucket, schema, leaf identifier.
var locationPatterns = []types.LocationPattern{
	{Name: "regular", Template: "s3://%s/%s/regular/%s"},
	{Name: "trailing_slash", Template: "s3://%s/%s/trailing_slash/%s/"},
	{Name: "double_slash", Template: "s3://%s/%s//double_slash/%s"},
	{Name: "percent", Template: "s3://%s/%s/a%%percent/%s"},
	{Name: "whitespace", Template: "s3://%s/%s/a whitespace/%s"},
	{Name: "trailing_whitespace", Template: "s3://%s/%s/trailing_whitespace/%s "},
}

// lifecycleKinds in matrix order.
var lifecycleKinds = []types.LifecycleKind{
	types.LifecycleTable,
	types.LifecycleSchema,
	types.LifecycleCompaction,
}

// Patterns returns the location-pattern matrix. The sequence is fixed,
// finite, and restartable; callers get a fresh copy each call.
func Patterns() []types.LocationPattern {
	out := make([]types.LocationPattern, len(locationPatterns))
	copy(out, locationPatterns)
	return out
}

// Scenarios returns the cartesian product of Patterns with the
// partitioning flag, for the table lifecycle. Order is deterministic for
// reproducible naming and carries no semantic meaning.
func Scenarios() []types.Scenario {
	return scenariosFor(types.LifecycleTable)
}

// AllScenarios returns the full matrix: every pattern crossed with both
// partitioning flags and every lifecycle kind.
func AllScenarios() []types.Scenario {
	var out []types.Scenario
	for _, kind := range lifecycleKinds {
		out = append(out, scenariosFor(kind)...)
	}
	return out
}

func scenariosFor(kind types.LifecycleKind) []types.Scenario {
	out := make([]types.Scenario, 0, 2*len(locationPatterns))
	for _, partitioned := range []bool{false, true} {
		for _, p := range locationPatterns {
			out = append(out, types.Scenario{
				Pattern:     p,
				Partitioned: partitioned,
				Lifecycle:   kind,
			})
		}
	}
	return out
}
