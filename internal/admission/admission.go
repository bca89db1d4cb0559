// Package admission keeps the number of ACTIVE transfer tasks on the transfer
// service below a ceiling before submitting new work.
package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/metrics"
	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/wait"
)

const (
	// DefaultCeiling is the maximum number of ACTIVE tasks allowed before submitting.
	DefaultCeiling = 80
	// DefaultInterval is the time between ACTIVE task counts while throttled.
	DefaultInterval = 10 * time.Second
)

// TaskLister lists the tasks of the transfer service on a status.
type TaskLister interface {
	ListTasks(ctx context.Context, status model.TaskStatus) ([]model.Task, error)
}

// ControllerConfig is the configuration for the admission controller.
type ControllerConfig struct {
	Tasks           TaskLister
	Sleeper         wait.Sleeper
	Interval        time.Duration
	MetricsRecorder metrics.Recorder
	Logger          log.Logger
	// TimeNow is used to measure the throttled time.
	TimeNow func() time.Time
}

func (c *ControllerConfig) defaults() error {
	if c.Tasks == nil {
		return fmt.Errorf("task lister is required")
	}
	if c.Sleeper == nil {
		c.Sleeper = wait.RealSleeper
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval can't be negative")
	}
	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "admission.Controller"})
	return nil
}

// Controller is the admission controller.
type Controller struct {
	tasks    TaskLister
	sleeper  wait.Sleeper
	interval time.Duration
	metrics  metrics.Recorder
	timeNow  func() time.Time
	logger   log.Logger
}

// NewController creates a new admission controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Controller{
		tasks:    cfg.Tasks,
		sleeper:  cfg.Sleeper,
		interval: cfg.Interval,
		metrics:  cfg.MetricsRecorder,
		timeNow:  cfg.TimeNow,
		logger:   cfg.Logger,
	}, nil
}

// Throttle blocks while the number of ACTIVE tasks on the transfer service is at or
// above the ceiling. The count is queried on every check, never cached. There is no
// timeout, only the context can stop the wait.
func (c *Controller) Throttle(ctx context.Context, ceiling int) error {
	if ceiling < 1 {
		return fmt.Errorf("ceiling must be positive: %w", model.ErrNotValid)
	}

	start := c.timeNow()
	checks := 0
	err := wait.Until(ctx, c.sleeper, c.interval, func(ctx context.Context) (bool, error) {
		active, err := c.tasks.ListTasks(ctx, model.TaskStatusActive)
		if err != nil {
			return false, fmt.Errorf("could not count active tasks: %w", err)
		}

		checks++
		n := len(active)
		c.metrics.SetActiveTasks(n)
		if n < ceiling {
			return true, nil
		}

		c.logger.Infof("Throttling: %d active tasks (ceiling %d), waiting %s", n, ceiling, c.interval)
		return false, nil
	})
	if err != nil {
		return err
	}

	c.metrics.ObserveThrottleWait(c.timeNow().Sub(start))
	if checks > 1 {
		c.logger.Infof("Admission granted after %d checks", checks)
	}

	return nil
}
