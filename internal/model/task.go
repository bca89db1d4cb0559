package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the state of a transfer task on the transfer service.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusActive    TaskStatus = "ACTIVE"
	TaskStatusSucceeded TaskStatus = "SUCCEEDED"
	TaskStatusFailed    TaskStatus = "FAILED"
	TaskStatusInactive  TaskStatus = "INACTIVE"
)

// IsTerminal returns true when the task left the pending/active states.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusSucceeded, TaskStatusFailed, TaskStatusInactive:
		return true
	}
	return false
}

// Valid returns true if the status is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusActive, TaskStatusSucceeded, TaskStatusFailed, TaskStatusInactive:
		return true
	}
	return false
}

// Task is the local read-only mirror of a transfer task owned by the transfer service.
type Task struct {
	// ID is assigned by the transfer service on submission.
	ID          string
	Status      TaskStatus
	Label       string
	RequestedAt *time.Time
	CompletedAt *time.Time
	// Raw is the last payload received from the service for this task.
	Raw json.RawMessage
	// FailureSnapshot is the local file with the terminal payload of an unsuccessful
	// task, empty when it wasn't written.
	FailureSnapshot string
}

// TaskSubmission is the acceptance response of a transfer submission.
type TaskSubmission struct {
	TaskID string
	Raw    json.RawMessage
}

// TransferRequest is a single transfer task submission.
type TransferRequest struct {
	Source      EndpointPath
	Destination EndpointPath
	// ManifestPath is optional, its lines are relative to Source and Destination.
	ManifestPath string
	Label        string
}

// ParseTaskStatus parses a task status, case insensitive.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid task status %q: %w", s, ErrNotValid)
	}
	return status, nil
}
