package types

// Checkpoint names used by the lifecycle driver. Each checkpoint is an
// independent snapshot taken from a fresh listing or query; a checkpoint
// is never derived by mutating the prior one in place.
const (
	// CheckpointAfterCreate is a storage listing of the table prefix
	// right after creation.
	CheckpointAfterCreate = "after-create"

	// CheckpointAfterMutations is the engine-reported active file set
	// once all mutations have run.
	CheckpointAfterMutations = "after-mutations"

	// CheckpointAfterOptimize is the engine-reported active file set
	// right after compaction.
	CheckpointAfterOptimize = "after-optimize"

	// CheckpointAllFiles is a fresh, unfiltered storage listing of the
	// table's data directory taken immediately after compaction.
	CheckpointAllFiles = "all-files"

	// CheckpointAfterDrop is a storage listing of the table prefix after
	// the drop.
	CheckpointAfterDrop = "after-drop"

	// CheckpointAfterDropRecheck is a second listing taken after the
	// drop; drop must be idempotent from the storage side.
	CheckpointAfterDropRecheck = "after-drop-recheck"
)

// Checkpoint pairs a named lifecycle point with the FileSet observed
// there.
type Checkpoint struct {
	Name  string  `json:"name"`
	Files FileSet `json:"files"`
}

// LifecycleRecord is the ordered sequence of checkpoints for one
// scenario, plus the location facts the fidelity checks need. The driver
// appends to it; the validator only reads it.
type LifecycleRecord struct {
	Scenario Scenario `json:"scenario"`

	// RequestedLocation is the edge-case location the scenario asked
	// for: the table location for the table and compaction lifecycles,
	// the schema location for the schema lifecycle.
	RequestedLocation Location `json:"requested_location"`

	// DescribedLocation is the location reported by Describe for the
	// same object after creation.
	DescribedLocation Location `json:"described_location"`

	// TableName is the leaf table name, needed to validate generated
	// locations in the schema lifecycle.
	TableName string `json:"table_name"`

	// TableLocation is the effective table location all listings were
	// taken under. Equal to RequestedLocation except in the schema
	// lifecycle, where the engine generates it.
	TableLocation Location `json:"table_location"`

	Checkpoints []Checkpoint `json:"checkpoints"`
}

// Record appends a checkpoint, cloning the file set so later snapshots
// cannot alias it.
func (r *LifecycleRecord) Record(name string, files FileSet) {
	r.Checkpoints = append(r.Checkpoints, Checkpoint{Name: name, Files: files.Clone()})
}

// Checkpoint returns the file set recorded under name.
func (r *LifecycleRecord) Checkpoint(name string) (FileSet, bool) {
	for _, c := range r.Checkpoints {
		if c.Name == name {
			return c.Files, true
		}
	}
	return nil, false
}

// LastCheckpoint returns the name of the most recently recorded
// checkpoint, or "" when none was reached. Used to report how far an
// aborted scenario got.
func (r *LifecycleRecord) LastCheckpoint() string {
	if len(r.Checkpoints) == 0 {
		return ""
	}
	return r.Checkpoints[len(r.Checkpoints)-1].Name
}
