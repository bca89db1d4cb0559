// Package fake is an in-memory transfer service. It's used on tests and for dry
// runs, no data is moved.
package fake

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
)

// ServiceConfig is the configuration for the fake transfer service.
type ServiceConfig struct {
	// Activated is the list of activated endpoints. Nil activates all of them.
	Activated []string
	// Outcomes is the terminal status of each submitted task, in submission order.
	// When exhausted the last one is reused. Defaults to SUCCEEDED.
	Outcomes []model.TaskStatus
	// ActivePolls is the number of polls a task reports ACTIVE before reaching its outcome.
	ActivePolls int
	// ActiveCounts are the number of active tasks reported on each ACTIVE task listing.
	// When exhausted the last one is reused. When empty the fake's own active tasks are used.
	ActiveCounts []int
	Logger       log.Logger
}

func (c *ServiceConfig) defaults() error {
	if len(c.Outcomes) == 0 {
		c.Outcomes = []model.TaskStatus{model.TaskStatusSucceeded}
	}
	for _, o := range c.Outcomes {
		if !o.IsTerminal() {
			return fmt.Errorf("outcome %q is not a terminal status", o)
		}
	}
	if c.ActivePolls < 0 {
		return fmt.Errorf("active polls can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "remote.Fake"})
	return nil
}

type task struct {
	model.Task
	outcome model.TaskStatus
	req     model.TransferRequest
	polls   int
}

// Service is a fake implementation of remote.Client.
type Service struct {
	activateAll  bool
	activated    map[string]bool
	dirs         map[string]map[string]bool
	tasks        map[string]*task
	taskOrder    []string
	outcomes     []model.TaskStatus
	activePolls  int
	activeCounts []int
	listCalls    int
	createdDirs  []string
	submitErr    error
	pollErr      error
	mu           sync.Mutex
	logger       log.Logger
}

// NewService creates a new fake transfer service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	activated := map[string]bool{}
	for _, id := range cfg.Activated {
		activated[id] = true
	}

	return &Service{
		activateAll:  cfg.Activated == nil,
		activated:    activated,
		dirs:         map[string]map[string]bool{},
		tasks:        map[string]*task{},
		outcomes:     cfg.Outcomes,
		activePolls:  cfg.ActivePolls,
		activeCounts: cfg.ActiveCounts,
		logger:       cfg.Logger,
	}, nil
}

// FailSubmissionsWith makes all the following submissions fail with err.
func (s *Service) FailSubmissionsWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitErr = err
}

// FailPollsWith makes all the following polls fail with err.
func (s *Service) FailPollsWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollErr = err
}

// IsActivated satisfies remote.Client interface.
func (s *Service) IsActivated(_ context.Context, endpointID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activateAll || s.activated[endpointID], nil
}

// Activate satisfies remote.Client interface.
func (s *Service) Activate(_ context.Context, endpointID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activated[endpointID] = true
	return fmt.Sprintf("Endpoint %s activated (fake)", endpointID), nil
}

// ListDirectory satisfies remote.Client interface.
func (s *Service) ListDirectory(_ context.Context, endpointID, dirPath, filter string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, err := newFilter(filter)
	if err != nil {
		return nil, err
	}

	dirPath = cleanPath(dirPath)
	dirs := s.endpointDirs(endpointID)
	if !dirs[dirPath] {
		return nil, fmt.Errorf("directory %s: %w", dirPath, model.ErrNotFound)
	}

	names := []string{}
	for d := range dirs {
		if d == dirPath || parentOf(d) != dirPath {
			continue
		}
		name := path.Base(d)
		if match(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return names, nil
}

// CreateDirectory satisfies remote.Client interface.
func (s *Service) CreateDirectory(_ context.Context, endpointID, dirPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirPath = cleanPath(dirPath)
	dirs := s.endpointDirs(endpointID)
	if dirs[dirPath] {
		return fmt.Errorf("directory %s: %w", dirPath, model.ErrAlreadyExists)
	}
	if !dirs[parentOf(dirPath)] {
		return fmt.Errorf("parent of %s: %w", dirPath, model.ErrNotFound)
	}

	dirs[dirPath] = true
	s.createdDirs = append(s.createdDirs, endpointID+":"+dirPath)
	s.logger.Debugf("Created directory %s:%s", endpointID, dirPath)

	return nil
}

// SubmitTransfer satisfies remote.Client interface.
func (s *Service) SubmitTransfer(_ context.Context, req model.TransferRequest) (*model.TaskSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitErr != nil {
		return nil, &model.SubmissionError{Stderr: s.submitErr.Error(), Err: s.submitErr}
	}

	outcome := s.outcomes[min(len(s.taskOrder), len(s.outcomes)-1)]
	now := time.Now().UTC()
	t := &task{
		Task: model.Task{
			ID:          uuid.NewString(),
			Status:      model.TaskStatusActive,
			Label:       req.Label,
			RequestedAt: &now,
		},
		outcome: outcome,
		req:     req,
	}
	s.tasks[t.ID] = t
	s.taskOrder = append(s.taskOrder, t.ID)

	raw, err := json.Marshal(map[string]any{
		"DATA_TYPE":     "transfer_result",
		"code":          "Accepted",
		"message":       "The transfer has been accepted and a task has been created and queued for execution",
		"task_id":       t.ID,
		"submission_id": uuid.NewString(),
	})
	if err != nil {
		return nil, &model.SubmissionError{Err: err}
	}

	s.logger.Debugf("Accepted task %s (%s -> %s)", t.ID, req.Source, req.Destination)
	return &model.TaskSubmission{TaskID: t.ID, Raw: raw}, nil
}

// PollTask satisfies remote.Client interface.
func (s *Service) PollTask(_ context.Context, taskID string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pollErr != nil {
		return nil, &model.PollError{TaskID: taskID, Stderr: s.pollErr.Error(), Err: s.pollErr}
	}

	t, ok := s.tasks[taskID]
	if !ok {
		return nil, &model.PollError{TaskID: taskID, Err: fmt.Errorf("task %s: %w", taskID, model.ErrNotFound)}
	}

	t.polls++
	if !t.Status.IsTerminal() && t.polls > s.activePolls {
		now := time.Now().UTC()
		t.Status = t.outcome
		t.CompletedAt = &now
	}

	res := t.Task
	res.Raw = t.payload()
	return &res, nil
}

// ListTasks satisfies remote.Client interface.
func (s *Service) ListTasks(_ context.Context, status model.TaskStatus) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status == model.TaskStatusActive && len(s.activeCounts) > 0 {
		n := s.activeCounts[min(s.listCalls, len(s.activeCounts)-1)]
		s.listCalls++

		tasks := make([]model.Task, 0, n)
		for i := 0; i < n; i++ {
			tasks = append(tasks, model.Task{ID: fmt.Sprintf("external-%d", i), Status: model.TaskStatusActive})
		}
		return tasks, nil
	}
	s.listCalls++

	tasks := []model.Task{}
	for _, id := range s.taskOrder {
		t := s.tasks[id]
		if t.Status == status {
			tt := t.Task
			tt.Raw = t.payload()
			tasks = append(tasks, tt)
		}
	}

	return tasks, nil
}

// Submissions returns the submitted transfer requests in order.
func (s *Service) Submissions() []model.TransferRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs := make([]model.TransferRequest, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		reqs = append(reqs, s.tasks[id].req)
	}
	return reqs
}

// TaskIDs returns the IDs of the submitted tasks in order.
func (s *Service) TaskIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string{}, s.taskOrder...)
}

// Polls returns the number of times a task has been polled.
func (s *Service) Polls(taskID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return 0
	}
	return t.polls
}

// TaskListings returns the number of task listings made.
func (s *Service) TaskListings() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listCalls
}

// CreatedDirectories returns the created directories as `endpoint:path`, in order.
func (s *Service) CreatedDirectories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string{}, s.createdDirs...)
}

func (s *Service) endpointDirs(endpointID string) map[string]bool {
	dirs, ok := s.dirs[endpointID]
	if !ok {
		dirs = map[string]bool{"/": true, "~": true}
		s.dirs[endpointID] = dirs
	}
	return dirs
}

func (t *task) payload() json.RawMessage {
	p := map[string]any{
		"DATA_TYPE":   "task",
		"task_id":     t.ID,
		"type":        "TRANSFER",
		"status":      t.Status,
		"label":       t.Label,
		"source":      t.req.Source.UUID,
		"destination": t.req.Destination.UUID,
	}
	if t.RequestedAt != nil {
		p["request_time"] = t.RequestedAt.Format(time.RFC3339)
	}
	if t.CompletedAt != nil {
		p["completion_time"] = t.CompletedAt.Format(time.RFC3339)
	}
	if t.Status == model.TaskStatusFailed || t.Status == model.TaskStatusInactive {
		p["nice_status"] = "FAULT"
	}

	raw, _ := json.Marshal(p)
	return raw
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean(p)
}

func parentOf(p string) string {
	if p == "/" || p == "~" {
		return p
	}
	dir := path.Dir(p)
	if dir == "." {
		return "~"
	}
	return dir
}

// newFilter returns a name matcher using the transfer service filter syntax.
func newFilter(filter string) (func(name string) bool, error) {
	negate := false
	glob := false
	switch {
	case filter == "":
		return func(string) bool { return true }, nil
	case strings.HasPrefix(filter, "!~"):
		negate, glob, filter = true, true, filter[2:]
	case strings.HasPrefix(filter, "!"):
		negate, filter = true, filter[1:]
	case strings.HasPrefix(filter, "~"):
		glob, filter = true, filter[1:]
	case strings.HasPrefix(filter, "="):
		filter = filter[1:]
	}

	if glob {
		if _, err := path.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", filter, model.ErrNotValid)
		}
	}

	return func(name string) bool {
		matched := name == filter
		if glob {
			matched, _ = path.Match(filter, name)
		}
		return matched != negate
	}, nil
}
