// Package state tracks fetch run history in a local SQLite database.
package state

import "time"

// RunStatus is the lifecycle state of a fetch run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run records one fetch: which tickers were requested, how many rows came
// back and where the snapshot landed.
type Run struct {
	ID           string
	Tickers      []string
	Status       RunStatus
	StartedAt    time.Time
	CompletedAt  *time.Time
	Rows         int
	SnapshotPath string
	Error        string
}

// Store persists run history.
type Store interface {
	// Open opens the database at path. Use ":memory:" for an in-memory store.
	Open(path string) error
	// InitSchema creates tables if they do not exist.
	InitSchema() error
	// Close releases the database connection.
	Close() error

	// CreateRun starts a new run for the given tickers.
	CreateRun(tickers []string) (*Run, error)
	// CompleteRun finalizes a run with its outcome.
	CompleteRun(id string, status RunStatus, rows int, snapshotPath, errMsg string) error
	// GetRun retrieves a run by ID.
	GetRun(id string) (*Run, error)
	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(limit int) ([]*Run, error)
}
