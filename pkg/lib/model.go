package lib

import (
	"encoding/json"
	"time"

	"github.com/slok/xferctl/internal/model"
)

// Backend identifies the transfer service implementation.
type Backend string

const (
	// BackendGlobus drives the globus CLI.
	BackendGlobus Backend = "globus"

	// BackendFake uses an in-memory transfer service where every task succeeds.
	// Use this for testing without a transfer service account.
	BackendFake Backend = "fake"
)

// TaskStatus is the state of a transfer task on the transfer service.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusActive    TaskStatus = "ACTIVE"
	TaskStatusSucceeded TaskStatus = "SUCCEEDED"
	TaskStatusFailed    TaskStatus = "FAILED"
	TaskStatusInactive  TaskStatus = "INACTIVE"
)

// Task is the local view of a transfer task. The transfer service owns the task,
// [Client.AwaitCompletion] refreshes it.
type Task struct {
	// ID is assigned by the transfer service.
	ID          string
	Status      TaskStatus
	Label       string
	CompletedAt *time.Time
	// Raw is the last payload received from the transfer service.
	Raw json.RawMessage
}

// TransferOpts are the options of a full transfer.
type TransferOpts struct {
	// SourceEndpoint and DestinationEndpoint are registered endpoint names.
	SourceEndpoint      string
	DestinationEndpoint string
	// SourcePaths and DestinationPaths are paired positionally, extra paths of the
	// longest list are ignored.
	SourcePaths      []string
	DestinationPaths []string
	// ManifestPath is an existing batch file, it replaces the path lists.
	ManifestPath string
	// RetryLimit is the maximum number of attempts, 0 uses the default. Default: 3.
	RetryLimit int
	Label      string
}

// TransferResult is the outcome of a transfer.
type TransferResult struct {
	Succeeded bool
	// RunID identifies the transfer on the journal.
	RunID        string
	ManifestPath string
	Attempts     int
	TaskIDs      []string
	// FailureSnapshots are the diagnostic files of the failed attempts.
	FailureSnapshots []string
}

// SubmitOpts are the options of a single transfer task submission.
type SubmitOpts struct {
	SourceEndpoint      string
	SourcePath          string
	DestinationEndpoint string
	DestinationPath     string
	// ManifestPath is optional, its lines are relative to the source and destination paths.
	ManifestPath string
	Label        string
}

func fromInternalTask(t model.Task) Task {
	return Task{
		ID:          t.ID,
		Status:      TaskStatus(t.Status),
		Label:       t.Label,
		CompletedAt: t.CompletedAt,
		Raw:         t.Raw,
	}
}

func toInternalTask(t Task) model.Task {
	return model.Task{
		ID:          t.ID,
		Status:      model.TaskStatus(t.Status),
		Label:       t.Label,
		CompletedAt: t.CompletedAt,
		Raw:         t.Raw,
	}
}
