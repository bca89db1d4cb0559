// Package globuscli implements the transfer service client using the `globus`
// command line program.
package globuscli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/utils/executor"
)

const (
	// DefaultProgram is the transfer service command line program.
	DefaultProgram = "globus"
	// taskListLimit is the maximum page the task listing allows, the default (10)
	// would hide active tasks from the admission control.
	taskListLimit = 1000
	notifyOn      = "failed,inactive"
)

// ClientConfig is the configuration for the globus CLI client.
type ClientConfig struct {
	// Program is the globus CLI binary, defaults to `globus` on PATH.
	Program string
	// Executor is optional, used to replace the process execution.
	Executor executor.Executor
	Logger   log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.Program == "" {
		c.Program = DefaultProgram
	}
	if c.Executor == nil {
		c.Executor = executor.NewProgramExecutor(c.Program)
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "remote.GlobusCLI"})
	return nil
}

// Client is a remote.Client that shells out to the globus CLI.
type Client struct {
	exec   executor.Executor
	logger log.Logger
}

// NewClient creates a new globus CLI client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		exec:   cfg.Executor,
		logger: cfg.Logger,
	}, nil
}

// IsActivated checks the endpoint activation, the CLI uses the exit code as the answer.
func (c *Client) IsActivated(ctx context.Context, endpointID string) (bool, error) {
	res, err := c.run(ctx, "endpoint", "is-activated", endpointID)
	if res == nil {
		return false, fmt.Errorf("could not check endpoint activation: %w", err)
	}

	switch res.ExitCode {
	case 0:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, fmt.Errorf("could not check endpoint activation: %w: %s", err, strings.TrimSpace(res.Stderr))
	}
}

// Activate starts the web activation of an endpoint, returns the CLI instructions (URL).
func (c *Client) Activate(ctx context.Context, endpointID string) (string, error) {
	res, err := c.run(ctx, "endpoint", "activate", "--web", "--no-browser", endpointID)
	if err != nil {
		return "", fmt.Errorf("could not activate endpoint: %w%s", err, stderrSuffix(res))
	}

	return strings.TrimSpace(res.Stdout), nil
}

// ListDirectory lists a directory. Any listing failure reported by the CLI is considered
// a missing directory.
func (c *Client) ListDirectory(ctx context.Context, endpointID, path, filter string) ([]string, error) {
	args := []string{"ls", "--format", "json"}
	if filter != "" {
		args = append(args, "--filter", filter)
	}
	args = append(args, model.EndpointPath{UUID: endpointID, Path: path}.String())

	res, err := c.run(ctx, args...)
	if err != nil {
		if res != nil {
			c.logger.Debugf("Listing %s:%s failed: %s", endpointID, path, strings.TrimSpace(res.Stderr))
			return nil, fmt.Errorf("directory %s: %w", path, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not list directory: %w", err)
	}

	var listing struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"DATA"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &listing); err != nil {
		return nil, fmt.Errorf("could not parse directory listing: %w", err)
	}

	names := make([]string, 0, len(listing.Data))
	for _, d := range listing.Data {
		names = append(names, d.Name)
	}
	sort.Strings(names)

	return names, nil
}

// CreateDirectory creates a directory.
func (c *Client) CreateDirectory(ctx context.Context, endpointID, path string) error {
	res, err := c.run(ctx, "mkdir", model.EndpointPath{UUID: endpointID, Path: path}.String())
	if err != nil {
		return fmt.Errorf("could not create directory %s: %w%s", path, err, stderrSuffix(res))
	}

	return nil
}

// SubmitTransfer submits an asynchronous transfer task.
func (c *Client) SubmitTransfer(ctx context.Context, req model.TransferRequest) (*model.TaskSubmission, error) {
	args := []string{
		"transfer", req.Source.String(), req.Destination.String(),
		"--notify", notifyOn,
		"--format", "json",
	}
	if req.Label != "" {
		args = append(args, "--label", req.Label)
	}
	if req.ManifestPath != "" {
		args = append(args, "--batch", req.ManifestPath)
	}

	res, err := c.run(ctx, args...)
	if err != nil {
		subErr := &model.SubmissionError{Err: err}
		if res != nil {
			subErr.Stdout, subErr.Stderr = res.Stdout, res.Stderr
		}
		return nil, subErr
	}

	var accepted struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &accepted); err != nil {
		return nil, &model.SubmissionError{Stdout: res.Stdout, Stderr: res.Stderr, Err: fmt.Errorf("could not parse response: %w", err)}
	}
	if accepted.TaskID == "" {
		return nil, &model.SubmissionError{Stdout: res.Stdout, Stderr: res.Stderr, Err: fmt.Errorf("response without task id: %w", model.ErrNotValid)}
	}

	return &model.TaskSubmission{
		TaskID: accepted.TaskID,
		Raw:    json.RawMessage(res.Stdout),
	}, nil
}

// PollTask gets the current task state. A non zero exit that still returns a task
// payload is considered a valid state.
func (c *Client) PollTask(ctx context.Context, taskID string) (*model.Task, error) {
	res, err := c.run(ctx, "task", "show", "--format", "json", taskID)
	if res == nil {
		return nil, &model.PollError{TaskID: taskID, Err: err}
	}

	t, perr := parseTask([]byte(res.Stdout))
	if perr != nil {
		if err == nil {
			err = perr
		}
		return nil, &model.PollError{TaskID: taskID, Stdout: res.Stdout, Stderr: res.Stderr, Err: err}
	}
	if err != nil {
		c.logger.Warningf("Task %s poll exited with code %d but returned a valid status", taskID, res.ExitCode)
	}

	return t, nil
}

// ListTasks lists the tasks filtered by status.
func (c *Client) ListTasks(ctx context.Context, status model.TaskStatus) ([]model.Task, error) {
	res, err := c.run(ctx, "task", "list",
		"--filter-status="+string(status),
		"--limit", strconv.Itoa(taskListLimit),
		"--format=json",
	)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w%s", err, stderrSuffix(res))
	}

	var listing struct {
		Data []json.RawMessage `json:"DATA"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &listing); err != nil {
		return nil, fmt.Errorf("could not parse task listing: %w", err)
	}

	tasks := make([]model.Task, 0, len(listing.Data))
	for _, raw := range listing.Data {
		t, err := parseTask(raw)
		if err != nil {
			return nil, fmt.Errorf("could not parse task listing: %w", err)
		}
		tasks = append(tasks, *t)
	}

	return tasks, nil
}

func (c *Client) run(ctx context.Context, args ...string) (*executor.Result, error) {
	c.logger.Debugf("Running globus %s", strings.Join(args, " "))
	return c.exec.Execute(ctx, args)
}

type taskPayload struct {
	TaskID         string  `json:"task_id"`
	Status         string  `json:"status"`
	Label          *string `json:"label"`
	RequestTime    *string `json:"request_time"`
	CompletionTime *string `json:"completion_time"`
}

func parseTask(data []byte) (*model.Task, error) {
	var p taskPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("could not parse task: %w", err)
	}
	if p.TaskID == "" || p.Status == "" {
		return nil, fmt.Errorf("task payload without id or status: %w", model.ErrNotValid)
	}

	t := &model.Task{
		ID:          p.TaskID,
		Status:      model.TaskStatus(strings.ToUpper(p.Status)),
		RequestedAt: parseTime(p.RequestTime),
		CompletedAt: parseTime(p.CompletionTime),
		Raw:         json.RawMessage(data),
	}
	if p.Label != nil {
		t.Label = *p.Label
	}

	return t, nil
}

func parseTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func stderrSuffix(res *executor.Result) string {
	if res == nil {
		return ""
	}
	if s := strings.TrimSpace(res.Stderr); s != "" {
		return ": " + s
	}
	return ""
}
