package mkdir

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
)

// DirectoryEnsurer creates remote directories when missing.
type DirectoryEnsurer interface {
	EnsureDirectory(ctx context.Context, endpointName, dirPath string) error
}

// ServiceConfig is the configuration for the mkdir service.
type ServiceConfig struct {
	Directories DirectoryEnsurer
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Directories == nil {
		return fmt.Errorf("directory manager is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Mkdir"})
	return nil
}

// Service ensures remote directories exist.
type Service struct {
	dirs   DirectoryEnsurer
	logger log.Logger
}

// NewService creates a new mkdir service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		dirs:   cfg.Directories,
		logger: cfg.Logger,
	}, nil
}

// Request represents the mkdir request parameters.
type Request struct {
	Endpoint string
	// Paths are created in order, parents are created when missing.
	Paths []string
}

// Run ensures all the requested directories exist on the endpoint.
func (s *Service) Run(ctx context.Context, req Request) error {
	if req.Endpoint == "" {
		return fmt.Errorf("endpoint is required: %w", model.ErrNotValid)
	}
	if len(req.Paths) == 0 {
		return fmt.Errorf("at least one path is required: %w", model.ErrNotValid)
	}

	for _, p := range req.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("empty path: %w", model.ErrNotValid)
		}
		if err := s.dirs.EnsureDirectory(ctx, req.Endpoint, p); err != nil {
			return fmt.Errorf("could not ensure %s:%s: %w", req.Endpoint, p, err)
		}
		s.logger.Debugf("Directory ready: %s:%s", req.Endpoint, p)
	}

	return nil
}
