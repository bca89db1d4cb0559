package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/xferctl/internal/admission"
	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/metrics"
	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/scratch"
	"github.com/slok/xferctl/internal/storage"
	"github.com/slok/xferctl/internal/wait"
)

const (
	// DefaultRetryLimit is the number of submissions made when not set.
	DefaultRetryLimit = 3
	// DefaultRetryBackoff is the wait between a failed attempt and the next one.
	DefaultRetryBackoff = 10 * time.Second
)

// EndpointResolver resolves endpoint names into endpoint UUIDs.
type EndpointResolver interface {
	Resolve(name string) (string, error)
}

// Throttler blocks until new work can be submitted to the transfer service.
type Throttler interface {
	Throttle(ctx context.Context, ceiling int) error
}

// TaskManager submits transfer tasks and waits for them.
type TaskManager interface {
	SubmitAsync(ctx context.Context, req model.TransferRequest) (*model.Task, error)
	AwaitCompletion(ctx context.Context, t *model.Task) (bool, error)
}

// Scratch is the local scratch space where the manifests are written.
type Scratch interface {
	WriteManifest(runID string, m model.Manifest) (string, error)
}

// ServiceConfig is the configuration for the transfer service.
type ServiceConfig struct {
	Endpoints       EndpointResolver
	Throttler       Throttler
	Tasks           TaskManager
	Scratch         Scratch
	Repository      storage.TransferRepository
	Sleeper         wait.Sleeper
	RetryBackoff    time.Duration
	Ceiling         int
	MetricsRecorder metrics.Recorder
	Logger          log.Logger
	IDGenerator     func() string
	TimeNow         func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Endpoints == nil {
		return fmt.Errorf("endpoints resolver is required")
	}
	if c.Throttler == nil {
		return fmt.Errorf("throttler is required")
	}
	if c.Tasks == nil {
		return fmt.Errorf("task manager is required")
	}
	if c.Scratch == nil {
		return fmt.Errorf("scratch is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Sleeper == nil {
		c.Sleeper = wait.RealSleeper
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff can't be negative")
	}
	if c.Ceiling == 0 {
		c.Ceiling = admission.DefaultCeiling
	}
	if c.Ceiling < 0 {
		return fmt.Errorf("ceiling can't be negative")
	}
	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}
	if c.IDGenerator == nil {
		c.IDGenerator = func() string { return ulid.Make().String() }
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Transfer"})
	return nil
}

// Service orchestrates a transfer: admission, submission, completion and retries.
type Service struct {
	endpoints    EndpointResolver
	throttler    Throttler
	tasks        TaskManager
	scratch      Scratch
	repo         storage.TransferRepository
	sleeper      wait.Sleeper
	retryBackoff time.Duration
	ceiling      int
	metrics      metrics.Recorder
	idGen        func() string
	timeNow      func() time.Time
	logger       log.Logger
}

// NewService creates a new transfer service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		endpoints:    cfg.Endpoints,
		throttler:    cfg.Throttler,
		tasks:        cfg.Tasks,
		scratch:      cfg.Scratch,
		repo:         cfg.Repository,
		sleeper:      cfg.Sleeper,
		retryBackoff: cfg.RetryBackoff,
		ceiling:      cfg.Ceiling,
		metrics:      cfg.MetricsRecorder,
		idGen:        cfg.IDGenerator,
		timeNow:      cfg.TimeNow,
		logger:       cfg.Logger,
	}, nil
}

// Request is a transfer between two registered endpoints.
type Request struct {
	SourceEndpoint      string
	DestinationEndpoint string
	// SourcePaths and DestinationPaths are zipped positionally into the manifest
	// when ManifestPath is not set.
	SourcePaths      []string
	DestinationPaths []string
	ManifestPath     string
	// RetryLimit is the maximum number of submissions, 0 uses DefaultRetryLimit.
	RetryLimit int
	Label      string
}

// Result is the outcome of a transfer.
type Result struct {
	Succeeded        bool
	RunID            string
	ManifestPath     string
	Attempts         int
	TaskIDs          []string
	FailureSnapshots []string
}

// Run runs the transfer. A transfer that exhausts its retries is not an error, it
// returns a result with Succeeded set to false. Errors are returned when the transfer
// machinery fails (bad request, submission, polling or admission errors).
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.RetryLimit == 0 {
		req.RetryLimit = DefaultRetryLimit
	}
	if req.RetryLimit < 1 {
		return nil, fmt.Errorf("retry limit must be at least 1: %w", model.ErrNotValid)
	}

	srcID, err := s.endpoints.Resolve(req.SourceEndpoint)
	if err != nil {
		return nil, fmt.Errorf("could not resolve source endpoint: %w", err)
	}
	dstID, err := s.endpoints.Resolve(req.DestinationEndpoint)
	if err != nil {
		return nil, fmt.Errorf("could not resolve destination endpoint: %w", err)
	}

	runID := s.idGen()
	logger := s.logger.WithValues(log.Kv{"run-id": runID})

	manifestPath, err := s.prepareManifest(runID, req, logger)
	if err != nil {
		return nil, err
	}

	start := s.timeNow().UTC()
	run := model.TransferRun{
		ID:                  runID,
		SourceEndpoint:      req.SourceEndpoint,
		DestinationEndpoint: req.DestinationEndpoint,
		ManifestPath:        manifestPath,
		Label:               req.Label,
		RetryLimit:          req.RetryLimit,
		Status:              model.TransferRunStatusRunning,
		CreatedAt:           start,
	}
	s.journal(logger, "create run", s.repo.CreateTransferRun(ctx, run))

	res := &Result{RunID: runID, ManifestPath: manifestPath}
	runErr := s.attempts(ctx, logger, &run, res, model.TransferRequest{
		Source:       model.EndpointPath{UUID: srcID},
		Destination:  model.EndpointPath{UUID: dstID},
		ManifestPath: manifestPath,
		Label:        req.Label,
	})

	finished := s.timeNow().UTC()
	run.FinishedAt = &finished
	run.Attempts = res.Attempts
	switch {
	case runErr != nil:
		run.Status = model.TransferRunStatusErrored
		run.Error = runErr.Error()
	case res.Succeeded:
		run.Status = model.TransferRunStatusSucceeded
	default:
		run.Status = model.TransferRunStatusFailed
	}
	// The run may be finished by a cancelled context, the journal still needs the outcome.
	s.journal(logger, "update run", s.repo.UpdateTransferRun(context.WithoutCancel(ctx), run))
	s.metrics.ObserveTransferRun(string(run.Status), res.Attempts, finished.Sub(start))

	if runErr != nil {
		return nil, runErr
	}

	if res.Succeeded {
		logger.Infof("Transfer %s -> %s succeeded after %d attempts", req.SourceEndpoint, req.DestinationEndpoint, res.Attempts)
	} else {
		logger.Warningf("Transfer %s -> %s failed after %d attempts", req.SourceEndpoint, req.DestinationEndpoint, res.Attempts)
	}

	return res, nil
}

func (s *Service) attempts(ctx context.Context, logger log.Logger, run *model.TransferRun, res *Result, treq model.TransferRequest) error {
	for n := 1; n <= run.RetryLimit; n++ {
		if err := s.throttler.Throttle(ctx, s.ceiling); err != nil {
			return fmt.Errorf("could not get admission: %w", err)
		}

		t, err := s.tasks.SubmitAsync(ctx, treq)
		if err != nil {
			return fmt.Errorf("could not submit transfer: %w", err)
		}
		res.Attempts = n
		res.TaskIDs = append(res.TaskIDs, t.ID)

		attempt := model.TransferAttempt{
			RunID:       run.ID,
			Number:      n,
			TaskID:      t.ID,
			Status:      t.Status,
			SubmittedAt: s.timeNow().UTC(),
		}
		s.journal(logger, "create attempt", s.repo.CreateTransferAttempt(ctx, attempt))

		ok, err := s.tasks.AwaitCompletion(ctx, t)
		if err != nil {
			return fmt.Errorf("could not wait for transfer completion: %w", err)
		}

		finished := s.timeNow().UTC()
		attempt.Status = t.Status
		attempt.FinishedAt = &finished
		s.journal(logger, "update attempt", s.repo.UpdateTransferAttempt(ctx, attempt))
		s.metrics.IncTransferAttempt(string(t.Status))

		if ok {
			res.Succeeded = true
			return nil
		}

		if t.FailureSnapshot != "" {
			res.FailureSnapshots = append(res.FailureSnapshots, t.FailureSnapshot)
		}
		logger.Warningf("Attempt %d/%d with task %s ended with %s status", n, run.RetryLimit, t.ID, t.Status)

		if n == run.RetryLimit {
			break
		}
		if err := s.sleeper.Sleep(ctx, s.retryBackoff); err != nil {
			return fmt.Errorf("retry backoff interrupted: %w", err)
		}
	}

	return nil
}

func (s *Service) prepareManifest(runID string, req Request, logger log.Logger) (string, error) {
	if req.ManifestPath != "" {
		m, err := scratch.ReadManifest(req.ManifestPath)
		if err != nil {
			return "", fmt.Errorf("invalid manifest: %w", err)
		}
		if len(m.Pairs) == 0 {
			return "", fmt.Errorf("manifest %s is empty: %w", req.ManifestPath, model.ErrNotValid)
		}
		return req.ManifestPath, nil
	}

	if len(req.SourcePaths) != len(req.DestinationPaths) {
		logger.Warningf("Source (%d) and destination (%d) path lists differ in length, extra paths are ignored", len(req.SourcePaths), len(req.DestinationPaths))
	}

	m := model.NewManifest(req.SourcePaths, req.DestinationPaths)
	if len(m.Pairs) == 0 {
		return "", fmt.Errorf("at least one source and destination path pair is required: %w", model.ErrNotValid)
	}

	path, err := s.scratch.WriteManifest(runID, m)
	if err != nil {
		return "", fmt.Errorf("could not write manifest: %w", err)
	}

	return path, nil
}

// Journal failures never break a transfer.
func (s *Service) journal(logger log.Logger, op string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.Debugf("Journal %s skipped: %s", op, err)
		return
	}
	logger.Errorf("Could not %s on transfer journal: %s", op, err)
}
