package tasklist

import (
	"context"
	"fmt"
	"sort"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
)

// TaskLister lists the tasks of the transfer service on a status.
type TaskLister interface {
	ListTasks(ctx context.Context, status model.TaskStatus) ([]model.Task, error)
}

// ServiceConfig is the configuration for the task list service.
type ServiceConfig struct {
	Tasks  TaskLister
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Tasks == nil {
		return fmt.Errorf("task lister is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskList"})
	return nil
}

// Service lists the transfer service tasks.
type Service struct {
	tasks  TaskLister
	logger log.Logger
}

// NewService creates a new task list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tasks:  cfg.Tasks,
		logger: cfg.Logger,
	}, nil
}

// Request represents the task list request parameters.
type Request struct {
	// Statuses are the task statuses to list, ACTIVE when empty.
	Statuses []model.TaskStatus
}

// Run lists the tasks on the requested statuses, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Task, error) {
	statuses := req.Statuses
	if len(statuses) == 0 {
		statuses = []model.TaskStatus{model.TaskStatusActive}
	}

	tasks := []model.Task{}
	for _, st := range statuses {
		got, err := s.tasks.ListTasks(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("could not list tasks: %w", err)
		}
		tasks = append(tasks, got...)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		ti, tj := tasks[i].RequestedAt, tasks[j].RequestedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		}
		return ti.After(*tj)
	})

	s.logger.Debugf("found %d tasks", len(tasks))
	return tasks, nil
}
