package lib

import (
	"context"
	"fmt"
	"path/filepath"

	"k8s.io/client-go/util/homedir"

	"github.com/slok/xferctl/internal/admission"
	"github.com/slok/xferctl/internal/app/transfer"
	"github.com/slok/xferctl/internal/conventions"
	"github.com/slok/xferctl/internal/dirs"
	"github.com/slok/xferctl/internal/endpoint"
	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/remote"
	"github.com/slok/xferctl/internal/remote/fake"
	"github.com/slok/xferctl/internal/remote/globuscli"
	"github.com/slok/xferctl/internal/scratch"
	"github.com/slok/xferctl/internal/storage"
	"github.com/slok/xferctl/internal/storage/memory"
	"github.com/slok/xferctl/internal/storage/sqlite"
	"github.com/slok/xferctl/internal/task"
)

// Config configures the SDK client.
type Config struct {
	// Endpoints maps endpoint names to their transfer service UUIDs.
	Endpoints map[string]string

	// DBPath is the transfer journal SQLite database path.
	// Default: ~/.xferctl/xferctl.db.
	DBPath string

	// InMemoryJournal keeps the transfer journal in memory, DBPath is ignored.
	InMemoryJournal bool

	// ScratchDir is where manifests and task snapshots are written.
	// Default: $TMPDIR or /tmp.
	ScratchDir string

	// Backend selects the transfer service. Default: [BackendGlobus].
	Backend Backend

	// GlobusBinary is the globus CLI path. Default: "globus" from PATH.
	GlobusBinary string

	// Ceiling is the maximum active tasks on the transfer service before a
	// transfer is submitted. Default: 80.
	Ceiling int

	// Logger receives the SDK log output. Default: noop (silent).
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.Endpoints == nil {
		c.Endpoints = map[string]string{}
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBFilePath(filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir))
	}

	if c.ScratchDir == "" {
		c.ScratchDir = scratch.DefaultDir(c.Logger)
	}

	switch c.Backend {
	case "":
		c.Backend = BackendGlobus
	case BackendGlobus, BackendFake:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.Ceiling == 0 {
		c.Ceiling = admission.DefaultCeiling
	}
	if c.Ceiling < 1 {
		return fmt.Errorf("ceiling must be at least 1")
	}

	return nil
}

// Client is the SDK entry point to orchestrate transfers programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
type Client struct {
	tasks     *task.Manager
	dirs      *dirs.Manager
	transfers *transfer.Service
	endpoints *endpoint.Registry
	logger    log.Logger
	closeFn   func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the journal database:
//
//	client, err := lib.New(ctx, lib.Config{Endpoints: endpoints})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, mapError(fmt.Errorf("invalid config: %w: %w", err, model.ErrNotValid))
	}

	registry := endpoint.NewRegistry(cfg.Endpoints)

	rc, err := newRemoteClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create transfer service client: %w", err)
	}

	store, err := scratch.NewStore(scratch.StoreConfig{Dir: cfg.ScratchDir, Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create scratch store: %w", err)
	}

	tasks, err := task.NewManager(task.ManagerConfig{
		Remote:    rc,
		Snapshots: store,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task manager: %w", err)
	}

	dm, err := dirs.NewManager(dirs.ManagerConfig{
		Endpoints: registry,
		Remote:    rc,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create directory manager: %w", err)
	}

	ctrl, err := admission.NewController(admission.ControllerConfig{
		Tasks:  tasks,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create admission controller: %w", err)
	}

	repo, closeFn, err := newJournal(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create journal: %w", err)
	}

	svc, err := transfer.NewService(transfer.ServiceConfig{
		Endpoints:  registry,
		Throttler:  ctrl,
		Tasks:      tasks,
		Scratch:    store,
		Repository: repo,
		Ceiling:    cfg.Ceiling,
		Logger:     cfg.Logger,
	})
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("could not create transfer service: %w", err)
	}

	return &Client{
		tasks:     tasks,
		dirs:      dm,
		transfers: svc,
		endpoints: registry,
		logger:    cfg.Logger,
		closeFn:   closeFn,
	}, nil
}

func newRemoteClient(cfg Config) (remote.Client, error) {
	if cfg.Backend == BackendFake {
		return fake.NewService(fake.ServiceConfig{Logger: cfg.Logger})
	}

	return globuscli.NewClient(globuscli.ClientConfig{
		Program: cfg.GlobusBinary,
		Logger:  cfg.Logger,
	})
}

func newJournal(ctx context.Context, cfg Config) (storage.TransferRepository, func() error, error) {
	if cfg.InMemoryJournal {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return nil }, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, nil, err
	}

	return repo, repo.Close, nil
}

// Close releases the resources held by the client.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// Transfer copies files between two endpoints and blocks until the transfer ends,
// resubmitting failed tasks up to the retry limit.
//
// A transfer that fails on every attempt is not an error, check
// [TransferResult.Succeeded]. Errors are returned for invalid options and when
// the transfer service can't be reached.
func (c *Client) Transfer(ctx context.Context, opts TransferOpts) (*TransferResult, error) {
	res, err := c.transfers.Run(ctx, transfer.Request{
		SourceEndpoint:      opts.SourceEndpoint,
		DestinationEndpoint: opts.DestinationEndpoint,
		SourcePaths:         opts.SourcePaths,
		DestinationPaths:    opts.DestinationPaths,
		ManifestPath:        opts.ManifestPath,
		RetryLimit:          opts.RetryLimit,
		Label:               opts.Label,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &TransferResult{
		Succeeded:        res.Succeeded,
		RunID:            res.RunID,
		ManifestPath:     res.ManifestPath,
		Attempts:         res.Attempts,
		TaskIDs:          res.TaskIDs,
		FailureSnapshots: res.FailureSnapshots,
	}, nil
}

// EnsureDirectory creates a directory on an endpoint with all its missing parents.
// Existing directories are left untouched.
//
// Returns [ErrEndpointNotActivated] when the endpoint needs activation.
func (c *Client) EnsureDirectory(ctx context.Context, endpointName, path string) error {
	return mapError(c.dirs.EnsureDirectory(ctx, endpointName, path))
}

// SubmitAsync submits a single transfer task and returns without waiting for it.
func (c *Client) SubmitAsync(ctx context.Context, opts SubmitOpts) (*Task, error) {
	srcID, err := c.endpoints.Resolve(opts.SourceEndpoint)
	if err != nil {
		return nil, mapError(err)
	}
	dstID, err := c.endpoints.Resolve(opts.DestinationEndpoint)
	if err != nil {
		return nil, mapError(err)
	}

	t, err := c.tasks.SubmitAsync(ctx, model.TransferRequest{
		Source:       model.EndpointPath{UUID: srcID, Path: opts.SourcePath},
		Destination:  model.EndpointPath{UUID: dstID, Path: opts.DestinationPath},
		ManifestPath: opts.ManifestPath,
		Label:        opts.Label,
	})
	if err != nil {
		return nil, mapError(err)
	}

	task := fromInternalTask(*t)
	return &task, nil
}

// AwaitCompletion blocks until the task reaches a terminal status and updates it.
// It returns true only when the task succeeded, the diagnostic payload of the
// other outcomes is written on the scratch directory.
func (c *Client) AwaitCompletion(ctx context.Context, t *Task) (bool, error) {
	if t == nil {
		return false, mapError(fmt.Errorf("task is required: %w", model.ErrNotValid))
	}

	it := toInternalTask(*t)
	ok, err := c.tasks.AwaitCompletion(ctx, &it)
	if err != nil {
		return false, mapError(err)
	}
	*t = fromInternalTask(it)

	return ok, nil
}
