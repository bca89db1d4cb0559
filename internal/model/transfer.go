package model

import "time"

// TransferRunStatus represents the state of an orchestrated transfer.
type TransferRunStatus string

const (
	TransferRunStatusRunning   TransferRunStatus = "running"
	TransferRunStatusSucceeded TransferRunStatus = "succeeded"
	TransferRunStatusFailed    TransferRunStatus = "failed"
	// TransferRunStatusErrored means the transfer machinery broke (submission/poll faults).
	TransferRunStatusErrored TransferRunStatus = "errored"
)

// TransferRun is a single orchestrated transfer, it can have multiple attempts.
type TransferRun struct {
	ID                  string
	SourceEndpoint      string
	DestinationEndpoint string
	ManifestPath        string
	Label               string
	RetryLimit          int
	Attempts            int
	Status              TransferRunStatus
	Error               string
	CreatedAt           time.Time
	FinishedAt          *time.Time
}

// TransferAttempt is a single task submission made by a transfer run.
type TransferAttempt struct {
	RunID       string
	Number      int
	TaskID      string
	Status      TaskStatus
	SubmittedAt time.Time
	FinishedAt  *time.Time
}
