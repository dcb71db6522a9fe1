package domain

import "time"

// RunStatus is the lifecycle state of a generation run.
type RunStatus string

// Available run states.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of corpus generation.
type Run struct {
	// ID is the unique run identifier.
	ID string

	// Status is the current lifecycle state.
	Status RunStatus

	// CorpusLocation is where the documents were written.
	CorpusLocation string

	// MetadataPath is the metadata table location.
	MetadataPath string

	// Planned is the number of jobs in the plan.
	Planned int

	// Saved is the number of documents persisted.
	Saved int

	// Failed is the number of generation failures.
	Failed int

	// Error holds the abort reason for failed runs.
	Error string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run ended (zero while running).
	FinishedAt time.Time
}

// DocumentRecord is the ledger entry for one generation attempt.
type DocumentRecord struct {
	RunID    string
	Index    int
	DocID    string
	Provider Provider
	Model    string
	Genre    string
	OK       bool
	Error    string
	Attempts int
	Duration time.Duration
	Chars    int
}
