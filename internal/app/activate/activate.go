package activate

import (
	"context"
	"fmt"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/remote"
)

// EndpointResolver resolves endpoint names into endpoint UUIDs.
type EndpointResolver interface {
	Resolve(name string) (string, error)
}

// ServiceConfig is the configuration for the activate service.
type ServiceConfig struct {
	Endpoints EndpointResolver
	Remote    remote.Client
	Logger    log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Endpoints == nil {
		return fmt.Errorf("endpoints resolver is required")
	}
	if c.Remote == nil {
		return fmt.Errorf("remote client is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Activate"})
	return nil
}

// Service checks the endpoint credentials and starts the activation flow of the
// transfer service when they are not valid.
type Service struct {
	endpoints EndpointResolver
	remote    remote.Client
	logger    log.Logger
}

// NewService creates a new activate service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		endpoints: cfg.Endpoints,
		remote:    cfg.Remote,
		logger:    cfg.Logger,
	}, nil
}

// Request represents the activate request parameters.
type Request struct {
	Endpoint string
}

// Result is the activation outcome.
type Result struct {
	EndpointID       string
	AlreadyActivated bool
	// Instructions are the steps the user needs to follow to finish the activation.
	Instructions string
}

// Run activates an endpoint if it's not already activated.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	id, err := s.endpoints.Resolve(req.Endpoint)
	if err != nil {
		return nil, err
	}

	ok, err := s.remote.IsActivated(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not check endpoint activation: %w", err)
	}
	if ok {
		return &Result{EndpointID: id, AlreadyActivated: true}, nil
	}

	instructions, err := s.remote.Activate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not activate endpoint %s: %w", req.Endpoint, err)
	}

	s.logger.Infof("Activation started for endpoint %s (%s)", req.Endpoint, id)
	return &Result{EndpointID: id, Instructions: instructions}, nil
}
