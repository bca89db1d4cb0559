// Package remote defines the operations consumed from the transfer service.
package remote

import (
	"context"

	"github.com/slok/xferctl/internal/model"
)

// Client is the transfer service client.
type Client interface {
	// IsActivated returns true if the endpoint has currently valid credentials.
	IsActivated(ctx context.Context, endpointID string) (bool, error)
	// Activate starts the endpoint web activation flow and returns its instructions.
	Activate(ctx context.Context, endpointID string) (string, error)
	// ListDirectory returns the entry names of a directory. Filter is optional and uses
	// the service filter syntax (`=`, `~`, `!`, `!~` prefixes). A directory that can't
	// be listed returns model.ErrNotFound.
	ListDirectory(ctx context.Context, endpointID, path, filter string) ([]string, error)
	// CreateDirectory creates a single directory.
	CreateDirectory(ctx context.Context, endpointID, path string) error
	// SubmitTransfer submits a transfer task. Returns a *model.SubmissionError if the
	// service doesn't accept it.
	SubmitTransfer(ctx context.Context, req model.TransferRequest) (*model.TaskSubmission, error)
	// PollTask returns the current state of a task. Returns a *model.PollError when
	// the state can't be obtained.
	PollTask(ctx context.Context, taskID string) (*model.Task, error)
	// ListTasks returns the tasks on the given status.
	ListTasks(ctx context.Context, status model.TaskStatus) ([]model.Task, error)
}

//go:generate mockery --case underscore --output remotemock --outpkg remotemock --name Client
