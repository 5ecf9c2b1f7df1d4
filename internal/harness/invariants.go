package harness

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

// generatedSuffix is the shape of the suffix an engine appends when it
// derives a table location from the schema location.
var generatedSuffix = regexp.MustCompile(`^[a-z0-9]+$`)

// CheckRetention validates the compaction retention law over three
// independently snapshotted sets: initial is the active file set before
// compaction, updated the active set after, allFiles a fresh unfiltered
// listing of the table's data directory taken right after compaction.
//
// Compaction must strictly reduce the file count when there is more than
// one file, and the data directory must hold exactly initial ∪ updated:
// new files are written before any old file is removed, and nothing
// outside the union may exist. The check is pure set algebra so it can
// be exercised with synthetic sets.
func CheckRetention(initial, updated, allFiles types.FileSet) error {
	if initial.Len() > 1 && updated.Len() >= initial.Len() {
		return fmt.Errorf("compaction did not reduce file count: %d -> %d",
			initial.Len(), updated.Len())
	}
	union := initial.Union(updated)
	if !allFiles.Equal(union) {
		return fmt.Errorf("data directory is not the union of pre- and post-compaction sets; symmetric difference: %v",
			allFiles.SymmetricDiff(union).Locations())
	}
	return nil
}

// ValidateRecord checks every lifecycle invariant against a completed
// record and returns one failed verdict per violated check. An empty
// slice means the scenario passed. The record is only read, never
// mutated.
func ValidateRecord(rec *types.LifecycleRecord) []types.Verdict {
	var verdicts []types.Verdict
	fail := func(checkpoints []string, format string, args ...any) {
		verdicts = append(verdicts, types.Verdict{
			Scenario:    rec.Scenario.Name(),
			Checkpoints: checkpoints,
			Passed:      false,
			Kind:        types.VerdictInvariant,
			Message:     fmt.Sprintf(format, args...),
		})
	}

	validateLocationFidelity(rec, fail)

	if created, ok := rec.Checkpoint(types.CheckpointAfterCreate); ok && created.Len() == 0 {
		fail([]string{types.CheckpointAfterCreate},
			"no objects under table prefix after create")
	}

	mutated, ok := rec.Checkpoint(types.CheckpointAfterMutations)
	if !ok {
		fail(nil, "checkpoint %s was never recorded", types.CheckpointAfterMutations)
		return verdicts
	}
	if mutated.Len() == 0 {
		fail([]string{types.CheckpointAfterMutations},
			"active file set is empty after mutations")
	}

	optimized, okOpt := rec.Checkpoint(types.CheckpointAfterOptimize)
	allFiles, okAll := rec.Checkpoint(types.CheckpointAllFiles)
	if okOpt && okAll {
		if err := CheckRetention(mutated, optimized, allFiles); err != nil {
			fail([]string{types.CheckpointAfterMutations, types.CheckpointAfterOptimize, types.CheckpointAllFiles},
				"%v", err)
		}
	} else {
		fail(nil, "compaction checkpoints were never recorded")
	}

	for _, name := range []string{types.CheckpointAfterDrop, types.CheckpointAfterDropRecheck} {
		dropped, ok := rec.Checkpoint(name)
		if !ok {
			fail(nil, "checkpoint %s was never recorded", name)
			continue
		}
		if dropped.Len() != 0 {
			fail([]string{name}, "objects remain under table prefix after drop: %v",
				dropped.Locations())
		}
	}

	return verdicts
}

// validateLocationFidelity checks that the system did not silently
// normalize or re-encode the requested edge-case location.
func validateLocationFidelity(rec *types.LifecycleRecord, fail func([]string, string, ...any)) {
	if rec.DescribedLocation != rec.RequestedLocation {
		fail([]string{types.CheckpointAfterCreate},
			"described location %q does not equal requested location %q",
			rec.DescribedLocation, rec.RequestedLocation)
	}

	if rec.Scenario.Lifecycle != types.LifecycleSchema {
		if rec.TableLocation != rec.RequestedLocation {
			fail([]string{types.CheckpointAfterCreate},
				"effective table location %q does not equal requested location %q",
				rec.TableLocation, rec.RequestedLocation)
		}
		return
	}

	// Schema lifecycle: the engine derives the table location from the
	// schema location, appending the table name and a generated suffix.
	prefix := string(rec.RequestedLocation)
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	prefix += rec.TableName + "-"
	rest, found := strings.CutPrefix(string(rec.TableLocation), prefix)
	if !found || !generatedSuffix.MatchString(rest) {
		fail([]string{types.CheckpointAfterCreate},
			"generated table location %q does not match %q followed by a lowercase alphanumeric suffix",
			rec.TableLocation, prefix)
	}
}
