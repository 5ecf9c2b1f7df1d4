package types

// VerdictKind classifies how a scenario concluded.
type VerdictKind string

const (
	// VerdictPassed means every invariant held.
	VerdictPassed VerdictKind = "passed"

	// VerdictInvariant means the scenario completed but an invariant
	// check failed.
	VerdictInvariant VerdictKind = "invariant-violation"

	// VerdictExecution means a collaborator rejected a command; the
	// scenario aborted. An infrastructure failure, not an invariant
	// violation.
	VerdictExecution VerdictKind = "execution-failure"

	// VerdictCodec means a description could not be decoded (missing,
	// ambiguous, or malformed location); the scenario aborted.
	VerdictCodec VerdictKind = "codec-failure"

	// VerdictTimeout means the scenario exceeded its deadline and was
	// abandoned in place.
	VerdictTimeout VerdictKind = "timeout"
)

// Verdict is the structured outcome of one check or one aborted
// scenario, suitable for serialization into a CI-consumable report.
type Verdict struct {
	// Scenario is the deterministic scenario name.
	Scenario string `json:"scenario"`

	// Checkpoints names the checkpoints involved in a failed check.
	Checkpoints []string `json:"checkpoints,omitempty"`

	Passed bool        `json:"passed"`
	Kind   VerdictKind `json:"kind"`

	// Message is a human-readable explanation referencing the file sets
	// that violated an invariant, or the underlying error on abort.
	Message string `json:"message,omitempty"`
}
