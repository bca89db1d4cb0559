// Package task submits transfer tasks to the transfer service and follows them
// until they reach a terminal state.
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/remote"
	"github.com/slok/xferctl/internal/wait"
)

// DefaultPollInterval is the time between task status queries.
const DefaultPollInterval = 15 * time.Second

// SnapshotWriter persists the task diagnostic payloads.
type SnapshotWriter interface {
	WriteTaskSnapshot(taskID string, raw json.RawMessage) (string, error)
	WriteFailureSnapshot(taskID string, raw json.RawMessage) (string, error)
}

// ManagerConfig is the configuration for the task manager.
type ManagerConfig struct {
	Remote       remote.Client
	Snapshots    SnapshotWriter
	Sleeper      wait.Sleeper
	PollInterval time.Duration
	Logger       log.Logger
}

func (c *ManagerConfig) defaults() error {
	if c.Remote == nil {
		return fmt.Errorf("remote client is required")
	}
	if c.Snapshots == nil {
		return fmt.Errorf("snapshot writer is required")
	}
	if c.Sleeper == nil {
		c.Sleeper = wait.RealSleeper
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll interval can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "task.Manager"})
	return nil
}

// Manager handles the lifecycle of the transfer tasks on the transfer service.
type Manager struct {
	remote       remote.Client
	snapshots    SnapshotWriter
	sleeper      wait.Sleeper
	pollInterval time.Duration
	logger       log.Logger
}

// NewManager creates a new task manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Manager{
		remote:       cfg.Remote,
		snapshots:    cfg.Snapshots,
		sleeper:      cfg.Sleeper,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
	}, nil
}

// SubmitAsync submits a transfer and returns as soon as the service accepts it.
// Any failure is returned as a *model.SubmissionError.
func (m *Manager) SubmitAsync(ctx context.Context, req model.TransferRequest) (*model.Task, error) {
	sub, err := m.remote.SubmitTransfer(ctx, req)
	if err != nil {
		if subErr := (*model.SubmissionError)(nil); errors.As(err, &subErr) {
			return nil, err
		}
		return nil, &model.SubmissionError{Err: err}
	}
	if sub == nil || sub.TaskID == "" {
		return nil, &model.SubmissionError{Err: fmt.Errorf("accepted submission without task id: %w", model.ErrNotValid)}
	}

	// Snapshots are diagnostics, the task is already running remotely.
	if _, err := m.snapshots.WriteTaskSnapshot(sub.TaskID, sub.Raw); err != nil {
		m.logger.Errorf("Could not write task %s snapshot: %s", sub.TaskID, err)
	}

	m.logger.WithValues(log.Kv{"task-id": sub.TaskID}).Infof("Transfer submitted: %s -> %s", req.Source, req.Destination)

	return &model.Task{
		ID:     sub.TaskID,
		Status: model.TaskStatusPending,
		Label:  req.Label,
		Raw:    sub.Raw,
	}, nil
}

// AwaitCompletion blocks until the task reaches a terminal status. Returns true only
// when the task succeeded, any other terminal status writes the failure snapshot and
// returns false. Errors are only returned when the task status can't be obtained or
// the context is done.
func (m *Manager) AwaitCompletion(ctx context.Context, t *model.Task) (bool, error) {
	if t == nil || t.ID == "" {
		return false, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	logger := m.logger.WithValues(log.Kv{"task-id": t.ID})

	var last *model.Task
	err := wait.Until(ctx, m.sleeper, m.pollInterval, func(ctx context.Context) (bool, error) {
		got, err := m.remote.PollTask(ctx, t.ID)
		if err != nil {
			return false, err
		}
		if got == nil {
			return false, &model.PollError{TaskID: t.ID, Err: fmt.Errorf("empty task status: %w", model.ErrNotValid)}
		}

		last = got
		logger.Debugf("Task status: %s", got.Status)
		return got.Status.IsTerminal(), nil
	})
	if err != nil {
		// The caller stopping the wait is not a broken poll.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, fmt.Errorf("wait of task %s stopped: %w", t.ID, ctxErr)
		}
		if pollErr := (*model.PollError)(nil); errors.As(err, &pollErr) {
			return false, err
		}
		return false, &model.PollError{TaskID: t.ID, Err: err}
	}

	t.Status = last.Status
	t.CompletedAt = last.CompletedAt
	t.Raw = last.Raw

	if last.Status == model.TaskStatusSucceeded {
		logger.Infof("Transfer task succeeded")
		return true, nil
	}

	path, err := m.snapshots.WriteFailureSnapshot(t.ID, last.Raw)
	if err != nil {
		logger.Errorf("Could not write failure snapshot: %s", err)
	} else {
		t.FailureSnapshot = path
		logger.Warningf("Transfer task ended with %s status, details on %s", last.Status, path)
	}

	return false, nil
}

// ListTasks returns the tasks of the transfer service on a status.
func (m *Manager) ListTasks(ctx context.Context, status model.TaskStatus) ([]model.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid task status %q: %w", status, model.ErrNotValid)
	}

	tasks, err := m.remote.ListTasks(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("could not list %s tasks: %w", status, err)
	}

	return tasks, nil
}
