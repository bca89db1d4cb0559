package history

import (
	"context"
	"fmt"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/storage"
)

// DefaultLimit is the number of runs listed when not set.
const DefaultLimit = 20

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.TransferRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.History"})
	return nil
}

// Service reads the transfer journal.
type Service struct {
	repo   storage.TransferRepository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the history request parameters.
type Request struct {
	// RunID selects a single run with its attempts. When empty the latest runs are listed.
	RunID string
	// Limit is the maximum number of runs listed, DefaultLimit when 0, all when negative.
	Limit int
}

// Result is the transfer journal view.
type Result struct {
	Runs []model.TransferRun
	// Attempts are only set when a single run is requested.
	Attempts []model.TransferAttempt
}

// Run returns the transfer history.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.RunID != "" {
		run, err := s.repo.GetTransferRun(ctx, req.RunID)
		if err != nil {
			return nil, fmt.Errorf("could not get transfer run: %w", err)
		}

		attempts, err := s.repo.ListTransferAttempts(ctx, req.RunID)
		if err != nil {
			return nil, fmt.Errorf("could not list transfer attempts: %w", err)
		}

		return &Result{Runs: []model.TransferRun{*run}, Attempts: attempts}, nil
	}

	limit := req.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	runs, err := s.repo.ListTransferRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list transfer runs: %w", err)
	}

	s.logger.Debugf("found %d transfer runs", len(runs))
	return &Result{Runs: runs}, nil
}
