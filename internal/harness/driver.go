package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

// seedRows is the initial population for the table and schema
// lifecycles.
var seedRows = []types.Row{{Str: "str1", Int: 1}, {Str: "str2", Int: 2}, {Str: "str3", Int: 3}}

// compactionRows are inserted one command at a time so each produces its
// own data file. The values deliberately carry doubled slashes and a
// percent character into partition paths.
var compactionRows = []types.Row{
	{Str: "one", Int: 1},
	{Str: "a//double_slash", Int: 2},
	{Str: "a%percent", Int: 3},
	{Str: "a//double_slash", Int: 4},
	{Str: "one", Int: 11},
}

// Driver orchestrates one complete lifecycle scenario against a given
// location pattern, recording the file set observed at each checkpoint.
// Steps within a scenario are strictly sequential; each step's
// postcondition is the next step's precondition. The driver never
// retries and never skips or reorders steps.
type Driver struct {
	cfg    types.Config
	exec   types.Executor
	lister types.ObjectLister
	logger *slog.Logger
}

// NewDriver builds a driver over the supplied collaborators. A nil
// logger discards log output.
func NewDriver(cfg types.Config, exec types.Executor, lister types.ObjectLister, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Driver{cfg: cfg, exec: exec, lister: lister, logger: logger}
}

// RunScenario drives one scenario end to end and returns its verdicts:
// a single passed verdict, one verdict per violated invariant, or a
// single abort verdict (execution, codec, or timeout failure). On abort
// the message names the last checkpoint reached so partial progress
// stays diagnosable.
func (d *Driver) RunScenario(ctx context.Context, sc types.Scenario) []types.Verdict {
	d.logger.Debug("starting scenario", "scenario", sc.Name())

	rec := &types.LifecycleRecord{Scenario: sc}
	var err error
	switch sc.Lifecycle {
	case types.LifecycleSchema:
		err = d.runSchemaLifecycle(ctx, sc, rec)
	case types.LifecycleCompaction:
		err = d.runCompactionLifecycle(ctx, sc, rec)
	default:
		err = d.runTableLifecycle(ctx, sc, rec)
	}
	if err != nil {
		verdict := abortVerdict(sc, rec, err)
		d.logger.Info("scenario aborted", "scenario", sc.Name(), "kind", verdict.Kind, "error", err)
		return []types.Verdict{verdict}
	}

	violations := ValidateRecord(rec)
	if len(violations) > 0 {
		d.logger.Info("scenario failed", "scenario", sc.Name(), "violations", len(violations))
		return violations
	}
	d.logger.Debug("scenario passed", "scenario", sc.Name())
	return []types.Verdict{{Scenario: sc.Name(), Passed: true, Kind: types.VerdictPassed}}
}

// abortVerdict classifies a scenario-aborting error.
func abortVerdict(sc types.Scenario, rec *types.LifecycleRecord, err error) types.Verdict {
	kind := types.VerdictExecution
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = types.VerdictTimeout
	case errors.Is(err, types.ErrLocationNotFound),
		errors.Is(err, types.ErrAmbiguousLocation),
		errors.Is(err, types.ErrMalformedLocation):
		kind = types.VerdictCodec
	}
	msg := err.Error()
	if last := rec.LastCheckpoint(); last != "" {
		msg = fmt.Sprintf("%s (last checkpoint: %s)", msg, last)
	}
	return types.Verdict{Scenario: sc.Name(), Passed: false, Kind: kind, Message: msg}
}

// runTableLifecycle drives the explicit-table-location flow: create a
// populated table at the edge-case location, mutate it through insert,
// update, delete, and all three merge arms with read-back verification,
// compact, and drop.
func (d *Driver) runTableLifecycle(ctx context.Context, sc types.Scenario, rec *types.LifecycleRecord) error {
	table := types.TableRef{Schema: d.cfg.SchemaName, Name: "test_basic_" + nameSuffix()}
	location := sc.Pattern.Format(d.cfg.Bucket, d.cfg.SchemaName, table.Name)
	rec.TableName = table.Name
	rec.RequestedLocation = location
	rec.TableLocation = location

	if err := d.execExpect(ctx, types.CreateTable{
		Table:       table,
		Location:    location,
		Partitioned: sc.Partitioned,
		Rows:        seedRows,
	}, 3); err != nil {
		return err
	}
	dropped := false
	defer d.cleanupTable(ctx, table, &dropped)

	if err := d.verifyRows(ctx, table, seedRows); err != nil {
		return err
	}
	if err := d.describeInto(ctx, types.DescribeTable(table), &rec.DescribedLocation); err != nil {
		return err
	}
	if err := d.recordPrefixListing(ctx, rec, types.CheckpointAfterCreate, location); err != nil {
		return err
	}

	if err := d.mutate(ctx, table); err != nil {
		return err
	}
	if err := d.finishLifecycle(ctx, rec, table, location, finalRows, &dropped); err != nil {
		return err
	}
	return nil
}

// finalRows is the expected visible row set once the mutation sequence
// completes.
var finalRows = []types.Row{
	{Str: "str1", Int: 1},
	{Str: "other", Int: 2},
	{Str: "str4", Int: 4},
	{Str: "str1", Int: 10},
}

// mutate applies the fixed mutation sequence, verifying the visible rows
// after every step. The trailing insert lands a second file in an
// already-populated partition so compaction always has something to
// fold.
func (d *Driver) mutate(ctx context.Context, table types.TableRef) error {
	steps := []struct {
		cmd      types.Command
		affected int64
		expected []types.Row
	}{
		{
			cmd:      types.Insert{Table: table, Rows: []types.Row{{Str: "str4", Int: 4}}},
			affected: 1,
			expected: []types.Row{{Str: "str1", Int: 1}, {Str: "str2", Int: 2}, {Str: "str3", Int: 3}, {Str: "str4", Int: 4}},
		},
		{
			cmd:      types.Update{Table: table, SetStr: "other", WhereInt: 2},
			affected: 1,
			expected: []types.Row{{Str: "str1", Int: 1}, {Str: "other", Int: 2}, {Str: "str3", Int: 3}, {Str: "str4", Int: 4}},
		},
		{
			cmd:      types.Delete{Table: table, WhereInt: 3},
			affected: 1,
			expected: []types.Row{{Str: "str1", Int: 1}, {Str: "other", Int: 2}, {Str: "str4", Int: 4}},
		},
		{
			cmd:      types.Merge{Table: table, Action: types.MergeInsert, Row: types.Row{Str: "str5", Int: 5}},
			affected: 1,
			expected: []types.Row{{Str: "str1", Int: 1}, {Str: "other", Int: 2}, {Str: "str4", Int: 4}, {Str: "str5", Int: 5}},
		},
		{
			cmd:      types.Merge{Table: table, Action: types.MergeUpdate, Key: 5, Row: types.Row{Str: "merged"}},
			affected: 1,
			expected: []types.Row{{Str: "str1", Int: 1}, {Str: "other", Int: 2}, {Str: "str4", Int: 4}, {Str: "merged", Int: 5}},
		},
		{
			cmd:      types.Merge{Table: table, Action: types.MergeDelete, Key: 5},
			affected: 1,
			expected: []types.Row{{Str: "str1", Int: 1}, {Str: "other", Int: 2}, {Str: "str4", Int: 4}},
		},
		{
			cmd:      types.Insert{Table: table, Rows: []types.Row{{Str: "str1", Int: 10}}},
			affected: 1,
			expected: finalRows,
		},
	}
	for _, step := range steps {
		if err := d.execExpect(ctx, step.cmd, step.affected); err != nil {
			return err
		}
		if err := d.verifyRows(ctx, table, step.expected); err != nil {
			return err
		}
	}
	return nil
}

// runSchemaLifecycle drives the explicit-schema-location flow: the
// schema gets the edge-case location and the engine derives the table
// location with a generated suffix.
func (d *Driver) runSchemaLifecycle(ctx context.Context, sc types.Scenario, rec *types.LifecycleRecord) error {
	schemaName := "test_schema_" + nameSuffix()
	schemaLocation := sc.Pattern.Format(d.cfg.Bucket, schemaName, schemaName)
	table := types.TableRef{Schema: schemaName, Name: "test_schema_table_" + nameSuffix()}
	rec.TableName = table.Name
	rec.RequestedLocation = schemaLocation

	if err := d.execExpect(ctx, types.CreateSchema{Name: schemaName, Location: schemaLocation}, 0); err != nil {
		return err
	}
	schemaDropped := false
	defer d.cleanupSchema(ctx, schemaName, &schemaDropped)

	if err := d.describeInto(ctx, types.DescribeSchema(schemaName), &rec.DescribedLocation); err != nil {
		return err
	}

	if err := d.execExpect(ctx, types.CreateTable{Table: table, Partitioned: sc.Partitioned}, 0); err != nil {
		return err
	}
	dropped := false
	defer d.cleanupTable(ctx, table, &dropped)

	if err := d.describeInto(ctx, types.DescribeTable(table), &rec.TableLocation); err != nil {
		return err
	}
	location := rec.TableLocation
	if err := d.recordPrefixListing(ctx, rec, types.CheckpointAfterCreate, location); err != nil {
		return err
	}

	steps := []struct {
		cmd      types.Command
		affected int64
		expected []types.Row
	}{
		{types.Insert{Table: table, Rows: seedRows}, 3, seedRows},
		{types.Update{Table: table, SetStr: "other", WhereInt: 2}, 1,
			[]types.Row{{Str: "str1", Int: 1}, {Str: "other", Int: 2}, {Str: "str3", Int: 3}}},
		{types.Delete{Table: table, WhereInt: 3}, 1,
			[]types.Row{{Str: "str1", Int: 1}, {Str: "other", Int: 2}}},
		{types.Insert{Table: table, Rows: []types.Row{{Str: "str1", Int: 10}}}, 1,
			[]types.Row{{Str: "str1", Int: 1}, {Str: "other", Int: 2}, {Str: "str1", Int: 10}}},
	}
	for _, step := range steps {
		if err := d.execExpect(ctx, step.cmd, step.affected); err != nil {
			return err
		}
		if err := d.verifyRows(ctx, table, step.expected); err != nil {
			return err
		}
	}

	expected := steps[len(steps)-1].expected
	if err := d.finishLifecycle(ctx, rec, table, location, expected, &dropped); err != nil {
		return err
	}

	if err := d.execExpect(ctx, types.DropSchema{Name: schemaName}, 0); err != nil {
		return err
	}
	schemaDropped = true
	return nil
}

// runCompactionLifecycle creates an empty table, produces one data file
// per single-row insert, and exercises the retention law against a
// known file count.
func (d *Driver) runCompactionLifecycle(ctx context.Context, sc types.Scenario, rec *types.LifecycleRecord) error {
	table := types.TableRef{Schema: d.cfg.SchemaName, Name: "test_optimize_" + nameSuffix()}
	location := sc.Pattern.Format(d.cfg.Bucket, d.cfg.SchemaName, table.Name)
	rec.TableName = table.Name
	rec.RequestedLocation = location
	rec.TableLocation = location

	if err := d.execExpect(ctx, types.CreateTable{
		Table:       table,
		Location:    location,
		Partitioned: sc.Partitioned,
	}, 0); err != nil {
		return err
	}
	dropped := false
	defer d.cleanupTable(ctx, table, &dropped)

	if err := d.describeInto(ctx, types.DescribeTable(table), &rec.DescribedLocation); err != nil {
		return err
	}
	if err := d.recordPrefixListing(ctx, rec, types.CheckpointAfterCreate, location); err != nil {
		return err
	}

	// One insert per row: a multi-value insert would produce a single
	// file and leave compaction nothing to do.
	for _, row := range compactionRows {
		if err := d.execExpect(ctx, types.Insert{Table: table, Rows: []types.Row{row}}, 1); err != nil {
			return err
		}
	}
	if err := d.verifyRows(ctx, table, compactionRows); err != nil {
		return err
	}

	active, err := d.activeFiles(ctx, table)
	if err != nil {
		return err
	}
	if active.Len() != len(compactionRows) {
		return fmt.Errorf("expected one active file per insert, got %d for %d inserts",
			active.Len(), len(compactionRows))
	}

	if err := d.finishLifecycle(ctx, rec, table, location, compactionRows, &dropped); err != nil {
		return err
	}
	return nil
}

// finishLifecycle runs the shared tail of every lifecycle: record the
// active set, compact, verify logical contents survived, record the
// post-compaction snapshots, drop, and record both post-drop listings.
func (d *Driver) finishLifecycle(ctx context.Context, rec *types.LifecycleRecord, table types.TableRef, location types.Location, expected []types.Row, dropped *bool) error {
	active, err := d.activeFiles(ctx, table)
	if err != nil {
		return err
	}
	rec.Record(types.CheckpointAfterMutations, active)

	if err := d.execExpect(ctx, types.Optimize{Table: table}, 0); err != nil {
		return err
	}
	if err := d.verifyRows(ctx, table, expected); err != nil {
		return err
	}

	optimized, err := d.activeFiles(ctx, table)
	if err != nil {
		return err
	}
	rec.Record(types.CheckpointAfterOptimize, optimized)

	if err := d.recordDataDirListing(ctx, rec, types.CheckpointAllFiles, location); err != nil {
		return err
	}

	if err := d.execExpect(ctx, types.DropTable{Table: table}, 0); err != nil {
		return err
	}
	*dropped = true

	if err := d.recordPrefixListing(ctx, rec, types.CheckpointAfterDrop, location); err != nil {
		return err
	}
	return d.recordPrefixListing(ctx, rec, types.CheckpointAfterDropRecheck, location)
}

// execExpect runs a mutating command and checks the reported row count.
func (d *Driver) execExpect(ctx context.Context, cmd types.Command, want int64) error {
	got, err := d.exec.Execute(ctx, cmd)
	if err != nil {
		return fmt.Errorf("executing %T: %w", cmd, err)
	}
	if got != want {
		return fmt.Errorf("%T affected %d rows, want %d", cmd, got, want)
	}
	return nil
}

// verifyRows reads the table back and compares against expected,
// order-insensitively.
func (d *Driver) verifyRows(ctx context.Context, table types.TableRef, expected []types.Row) error {
	got, err := d.exec.Query(ctx, types.Query{Table: table, Select: types.SelectRows})
	if err != nil {
		return fmt.Errorf("querying %s: %w", table, err)
	}
	if !sameRows(got, expected) {
		return fmt.Errorf("rows of %s are %v, want %v", table, sortedRows(got), sortedRows(expected))
	}
	return nil
}

// describeInto fetches a description and decodes its location into dst.
func (d *Driver) describeInto(ctx context.Context, ref types.ObjectRef, dst *types.Location) error {
	text, err := d.exec.Describe(ctx, ref)
	if err != nil {
		return fmt.Errorf("describing %s %s: %w", ref.Kind, ref.Schema, err)
	}
	loc, err := ExtractLocation(text)
	if err != nil {
		return err
	}
	*dst = loc
	return nil
}

// activeFiles returns the engine's current snapshot file set.
func (d *Driver) activeFiles(ctx context.Context, table types.TableRef) (types.FileSet, error) {
	rows, err := d.exec.Query(ctx, types.Query{Table: table, Select: types.SelectPaths})
	if err != nil {
		return nil, fmt.Errorf("querying active files of %s: %w", table, err)
	}
	files := make(types.FileSet, len(rows))
	for _, r := range rows {
		files.Add(types.Location(r.Str))
	}
	return files, nil
}

// recordPrefixListing snapshots the storage objects under the location's
// full prefix.
func (d *Driver) recordPrefixListing(ctx context.Context, rec *types.LifecycleRecord, name string, location types.Location) error {
	files, err := d.listPrefix(ctx, location, "")
	if err != nil {
		return err
	}
	rec.Record(name, files)
	return nil
}

// recordDataDirListing snapshots the storage objects under the
// location's data directory only.
func (d *Driver) recordDataDirListing(ctx context.Context, rec *types.LifecycleRecord, name string, location types.Location) error {
	files, err := d.listPrefix(ctx, location, "data/")
	if err != nil {
		return err
	}
	rec.Record(name, files)
	return nil
}

// listPrefix lists storage under location's key prefix plus sub. The key
// prefix is taken from the location verbatim, byte-for-byte.
func (d *Driver) listPrefix(ctx context.Context, location types.Location, sub string) (types.FileSet, error) {
	bucket, key, err := SplitLocation(location)
	if err != nil {
		return nil, err
	}
	if sub != "" {
		if !strings.HasSuffix(key, "/") {
			key += "/"
		}
		key += sub
	}
	locs, err := d.lister.List(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("listing %s/%s: %w", bucket, key, err)
	}
	return types.NewFileSet(locs...), nil
}

// cleanupTable best-effort drops a table a failed scenario left behind.
// It runs detached from the scenario's (possibly expired) context and
// tolerates the table already being gone.
func (d *Driver) cleanupTable(ctx context.Context, table types.TableRef, dropped *bool) {
	if *dropped {
		return
	}
	if _, err := d.exec.Execute(context.WithoutCancel(ctx), types.DropTable{Table: table}); err != nil {
		d.logger.Debug("cleanup drop table failed", "table", table.String(), "error", err)
	}
}

// cleanupSchema best-effort drops a schema a failed scenario left
// behind.
func (d *Driver) cleanupSchema(ctx context.Context, name string, dropped *bool) {
	if *dropped {
		return
	}
	if _, err := d.exec.Execute(context.WithoutCancel(ctx), types.DropSchema{Name: name}); err != nil {
		d.logger.Debug("cleanup drop schema failed", "schema", name, "error", err)
	}
}

// nameSuffix returns a short globally-unique lowercase alphanumeric
// suffix so concurrent scenarios never contend on the same storage
// prefix. The suffix is the random tail of a UUIDv7; the leading bytes
// are a millisecond timestamp shared by every ID minted in the same
// millisecond, so they carry no uniqueness.
func nameSuffix() string {
	id := strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
	return id[len(id)-12:]
}

// sameRows compares two row multisets order-insensitively.
func sameRows(a, b []types.Row) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := sortedRows(a), sortedRows(b)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// sortedRows returns a copy of rows in (Int, Str) order.
func sortedRows(rows []types.Row) []types.Row {
	out := make([]types.Row, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Int != out[j].Int {
			return out[i].Int < out[j].Int
		}
		return out[i].Str < out[j].Str
	})
	return out
}
