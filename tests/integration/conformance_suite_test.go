// Package integration runs the full conformance matrix against the
// local binding end to end.
// Implements: prd001-harness-core R6, prd002-local-binding R4.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lakecheck/internal/localtab"
	"github.com/mesh-intelligence/lakecheck/pkg/lakecheck"
	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

// setupBackend attaches a local binding to an isolated temp directory.
func setupBackend(t *testing.T, cfg types.Config) *localtab.Backend {
	t.Helper()
	b := localtab.NewBackend()
	require.NoError(t, b.Attach(cfg))
	t.Cleanup(func() { b.Detach() })
	return b
}

func suiteConfig(t *testing.T) types.Config {
	t.Helper()
	return types.Config{
		Bucket:          "lakecheck-test",
		SchemaName:      "test_suite_schema",
		DataDir:         t.TempDir(),
		ScenarioTimeout: time.Minute,
		Parallelism:     4,
	}
}

// TestFullMatrix runs every scenario in the matrix against the local
// binding. The binding is conformant, so every verdict must pass.
func TestFullMatrix(t *testing.T) {
	cfg := suiteConfig(t)
	backend := setupBackend(t, cfg)

	scenarios := lakecheck.AllScenarios()
	verdicts, err := lakecheck.Run(context.Background(), cfg, backend, backend, nil, scenarios)
	require.NoError(t, err)
	require.Len(t, verdicts, len(scenarios))

	for _, v := range verdicts {
		assert.True(t, v.Passed, "%s: [%s] %s", v.Scenario, v.Kind, v.Message)
		assert.Equal(t, types.VerdictPassed, v.Kind, "%s: %s", v.Scenario, v.Message)
	}

	// The shared schema is gone once the run finishes.
	_, err = backend.Describe(context.Background(), types.DescribeSchema(cfg.SchemaName))
	assert.ErrorIs(t, err, types.ErrSchemaNotFound)

	// So is every object the run created.
	leftovers, err := backend.List(context.Background(), cfg.Bucket, "")
	require.NoError(t, err)
	assert.Empty(t, leftovers, "objects left in storage after the run: %v", leftovers)
}

// TestLifecycleSubsets runs each lifecycle kind on its own, the way the
// CLI's --lifecycle flag slices the matrix.
func TestLifecycleSubsets(t *testing.T) {
	for _, kind := range []types.LifecycleKind{
		types.LifecycleTable,
		types.LifecycleSchema,
		types.LifecycleCompaction,
	} {
		t.Run(string(kind), func(t *testing.T) {
			cfg := suiteConfig(t)

			var scenarios []types.Scenario
			for _, sc := range lakecheck.AllScenarios() {
				if sc.Lifecycle == kind {
					scenarios = append(scenarios, sc)
				}
			}
			require.Len(t, scenarios, 12)

			verdicts, err := lakecheck.RunLocal(context.Background(), cfg, nil, scenarios)
			require.NoError(t, err)
			require.Len(t, verdicts, len(scenarios))
			for _, v := range verdicts {
				assert.True(t, v.Passed, "%s: [%s] %s", v.Scenario, v.Kind, v.Message)
			}
		})
	}
}

// TestRunLocalDetaches verifies RunLocal releases the binding: the data
// dir holds no open database after the run, so a second run over the
// same dir starts clean.
func TestRunLocalDetaches(t *testing.T) {
	cfg := suiteConfig(t)
	scenarios := lakecheck.Scenarios()[:2]

	for i := 0; i < 2; i++ {
		verdicts, err := lakecheck.RunLocal(context.Background(), cfg, nil, scenarios)
		require.NoError(t, err, "run %d", i)
		require.Len(t, verdicts, len(scenarios))
		for _, v := range verdicts {
			assert.True(t, v.Passed, "run %d, %s: %s", i, v.Scenario, v.Message)
		}
	}
}

// TestNonConformantListerIsCaught wraps the binding's lister with one
// that drops an object from every listing, and checks the harness turns
// that into invariant violations rather than passing silently.
func TestNonConformantListerIsCaught(t *testing.T) {
	cfg := suiteConfig(t)
	backend := setupBackend(t, cfg)

	lossy := &dropOneLister{inner: backend}
	scenarios := lakecheck.Scenarios()[:1]
	verdicts, err := lakecheck.Run(context.Background(), cfg, backend, lossy, nil, scenarios)
	require.NoError(t, err)

	require.NotEmpty(t, verdicts)
	for _, v := range verdicts {
		assert.False(t, v.Passed, "a lossy lister must not pass: %s", v.Message)
		assert.Equal(t, types.VerdictInvariant, v.Kind)
	}
}

// dropOneLister hides the first object of every non-empty listing.
type dropOneLister struct {
	inner types.ObjectLister
}

func (d *dropOneLister) List(ctx context.Context, bucket, keyPrefix string) ([]types.Location, error) {
	locs, err := d.inner.List(ctx, bucket, keyPrefix)
	if err != nil || len(locs) == 0 {
		return locs, err
	}
	return locs[1:], nil
}
