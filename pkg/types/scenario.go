package types

import "fmt"

// LocationPattern is a three-slot template for a storage location with a
// fixed structural quirk (trailing slash, doubled slash, percent literal,
// embedded or trailing whitespace). The slots are bucket, schema, and leaf
// identifier, in that order. Patterns are immutable and identified by
// their template text.
type LocationPattern struct {
	// Name is a short slug used in scenario names (e.g. "trailing_slash").
	Name string `json:"name"`

	// Template is a positional format string with three %s slots. A
	// literal percent character is written %%.
	Template string `json:"template"`
}

// Format substitutes bucket, schema, and leaf into the pattern's slots.
// Slot content is inserted verbatim; it is never re-interpreted as path
// syntax.
func (p LocationPattern) Format(bucket, schema, leaf string) Location {
	return Location(fmt.Sprintf(p.Template, bucket, schema, leaf))
}

// LifecycleKind selects which lifecycle flow a scenario drives.
type LifecycleKind string

const (
	// LifecycleTable creates a table at an explicit edge-case location,
	// mutates it, compacts it, and drops it.
	LifecycleTable LifecycleKind = "table"

	// LifecycleSchema creates a schema at an explicit edge-case location,
	// lets the engine derive the table location, then runs the same
	// mutation, compaction, and drop checks.
	LifecycleSchema LifecycleKind = "schema"

	// LifecycleCompaction creates an empty table, produces one data file
	// per insert, and exercises the compaction retention law.
	LifecycleCompaction LifecycleKind = "compaction"
)

// Scenario is one concrete combination of location-encoding pattern,
// partitioning flag, and lifecycle kind. Scenarios are immutable; the
// cross product of all patterns, both partitioning flags, and all
// lifecycle kinds forms the full test matrix.
type Scenario struct {
	Pattern     LocationPattern `json:"pattern"`
	Partitioned bool            `json:"partitioned"`
	Lifecycle   LifecycleKind   `json:"lifecycle"`
}

// Name returns a deterministic, human-readable scenario identifier
// suitable for test naming. The order of the matrix carries no semantic
// meaning; the name only has to be reproducible.
func (s Scenario) Name() string {
	part := "unpartitioned"
	if s.Partitioned {
		part = "partitioned"
	}
	return fmt.Sprintf("%s/%s/%s", s.Lifecycle, s.Pattern.Name, part)
}
