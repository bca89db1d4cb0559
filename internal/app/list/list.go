package list

import (
	"context"
	"fmt"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
)

// DirectoryLister lists remote directories.
type DirectoryLister interface {
	List(ctx context.Context, endpointName, dirPath, filter string) ([]string, error)
}

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Directories DirectoryLister
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Directories == nil {
		return fmt.Errorf("directory manager is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.List"})
	return nil
}

// Service lists remote directory entries with optional filtering.
type Service struct {
	dirs   DirectoryLister
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		dirs:   cfg.Directories,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	Endpoint string
	Path     string
	// Filter is optional, it uses the transfer service filter syntax
	// (`=` exact, `~` pattern, `!` and `!~` negations).
	Filter string
}

// Run lists the entries of a remote directory.
func (s *Service) Run(ctx context.Context, req Request) ([]string, error) {
	if req.Endpoint == "" || req.Path == "" {
		return nil, fmt.Errorf("endpoint and path are required: %w", model.ErrNotValid)
	}

	s.logger.Debugf("listing %s:%s with filter: %q", req.Endpoint, req.Path, req.Filter)

	entries, err := s.dirs.List(ctx, req.Endpoint, req.Path, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("could not list %s:%s: %w", req.Endpoint, req.Path, err)
	}

	s.logger.Debugf("found %d entries", len(entries))
	return entries, nil
}
