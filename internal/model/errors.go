package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrUnknownEndpoint is returned when an endpoint name is not registered.
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	// ErrEndpointNotActivated is returned when an endpoint lacks active credentials.
	ErrEndpointNotActivated = errors.New("endpoint is not activated")
)

// SubmissionError is returned when the transfer service rejects or can't process a
// transfer submission. It carries the captured output of the service call.
type SubmissionError struct {
	Stdout string
	Stderr string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("transfer submission failed: %s: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("transfer submission failed: %s", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PollError is returned when the task status can't be obtained from the transfer
// service. It means the polling machinery is broken, not that the transfer failed.
type PollError struct {
	TaskID string
	Stdout string
	Stderr string
	Err    error
}

func (e *PollError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("could not poll task %s: %s: %s", e.TaskID, e.Err, e.Stderr)
	}
	return fmt.Sprintf("could not poll task %s: %s", e.TaskID, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }
