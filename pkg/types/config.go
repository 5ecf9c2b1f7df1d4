// Package types defines the data model, collaborator interfaces, and
// standard errors for the lakecheck conformance harness.
// Implements: prd001-harness-core (Config, Executor, ObjectLister, errors).
// See docs/ARCHITECTURE.md § Main Interfaces.
package types

import (
	"errors"
	"strings"
	"time"
)

// Config holds the shared state for one harness run: the bucket every
// scenario writes under, the schema shared by table-location scenarios,
// and execution limits. It is threaded explicitly into the driver and
// runner; there is no process-wide singleton.
type Config struct {
	// Bucket is the object-store bucket all scenario locations live under.
	Bucket string `json:"bucket" yaml:"bucket"`

	// SchemaName is the schema shared by table-location scenarios. When
	// empty the runner generates a uniquely suffixed name for the run.
	SchemaName string `json:"schema_name" yaml:"schema_name"`

	// DataDir is where the local binding keeps its state. Empty means a
	// temporary directory chosen by the binding.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// ScenarioTimeout bounds a single scenario. Zero means the default
	// (two minutes). A scenario exceeding it yields a timeout verdict
	// instead of hanging the run.
	ScenarioTimeout time.Duration `json:"scenario_timeout" yaml:"scenario_timeout"`

	// Parallelism caps concurrently running scenarios. Zero means the
	// default (four).
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// Config validation errors (prd001-harness-core R1.3).
var (
	ErrBucketEmpty        = errors.New("bucket must not be empty")
	ErrBucketInvalid      = errors.New("bucket must not contain a slash")
	ErrTimeoutNegative    = errors.New("scenario timeout must not be negative")
	ErrParallelismInvalid = errors.New("parallelism must not be negative")
)

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return ErrBucketEmpty
	}
	if strings.Contains(c.Bucket, "/") {
		return ErrBucketInvalid
	}
	if c.ScenarioTimeout < 0 {
		return ErrTimeoutNegative
	}
	if c.Parallelism < 0 {
		return ErrParallelismInvalid
	}
	return nil
}

// Defaults applied by the runner when the corresponding field is zero.
const (
	DefaultScenarioTimeout = 2 * time.Minute
	DefaultParallelism     = 4
)
