package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

// Runner executes scenarios concurrently. Scenarios are independent:
// each allocates globally-unique identifiers, so the runner imposes no
// ordering between them, only a concurrency cap and a per-scenario
// deadline.
type Runner struct {
	cfg    types.Config
	exec   types.Executor
	driver *Driver
	logger *slog.Logger
}

// NewRunner validates the config, applies defaults, and builds a runner
// over the supplied collaborators. A nil logger discards log output.
func NewRunner(cfg types.Config, exec types.Executor, lister types.ObjectLister, logger *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.SchemaName == "" {
		cfg.SchemaName = "test_lakecheck_" + nameSuffix()
	}
	if cfg.ScenarioTimeout == 0 {
		cfg.ScenarioTimeout = types.DefaultScenarioTimeout
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = types.DefaultParallelism
	}
	return &Runner{
		cfg:    cfg,
		exec:   exec,
		driver: NewDriver(cfg, exec, lister, logger),
		logger: logger,
	}, nil
}

// SchemaName returns the schema shared by table-location scenarios for
// this run.
func (r *Runner) SchemaName() string {
	return r.cfg.SchemaName
}

// Run executes the given scenarios and returns every verdict in matrix
// order. Scenario failures of any kind become verdicts, never an error;
// the returned error is non-nil only when setup fails or the caller's
// context ends the run early. The shared schema is dropped on the way
// out even when scenarios failed.
func (r *Runner) Run(ctx context.Context, scenarios []types.Scenario) ([]types.Verdict, error) {
	r.logger.Info("starting run",
		"scenarios", len(scenarios),
		"schema", r.cfg.SchemaName,
		"parallelism", r.cfg.Parallelism)

	if _, err := r.exec.Execute(ctx, types.CreateSchema{Name: r.cfg.SchemaName}); err != nil {
		return nil, fmt.Errorf("creating shared schema %s: %w", r.cfg.SchemaName, err)
	}
	defer func() {
		// Best-effort: aborted scenarios may have left tables behind,
		// in which case the drop fails and the leftovers are visible
		// for debugging.
		if _, err := r.exec.Execute(context.WithoutCancel(ctx), types.DropSchema{Name: r.cfg.SchemaName}); err != nil {
			r.logger.Debug("dropping shared schema failed", "schema", r.cfg.SchemaName, "error", err)
		}
	}()

	results := make([][]types.Verdict, len(scenarios))
	var g errgroup.Group
	g.SetLimit(r.cfg.Parallelism)
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, r.cfg.ScenarioTimeout)
			defer cancel()
			results[i] = r.driver.RunScenario(sctx, sc)
			return nil
		})
	}
	_ = g.Wait()

	var verdicts []types.Verdict
	for _, vs := range results {
		verdicts = append(verdicts, vs...)
	}
	r.logger.Info("run finished", "verdicts", len(verdicts), "failed", countFailed(verdicts))

	if err := ctx.Err(); err != nil {
		return verdicts, err
	}
	return verdicts, nil
}

func countFailed(verdicts []types.Verdict) int {
	n := 0
	for _, v := range verdicts {
		if !v.Passed {
			n++
		}
	}
	return n
}
