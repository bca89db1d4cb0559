package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.TransferRepository.
type Repository struct {
	runs     map[string]model.TransferRun
	attempts map[string][]model.TransferAttempt
	mu       sync.RWMutex
	logger   log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		runs:     make(map[string]model.TransferRun),
		attempts: make(map[string][]model.TransferAttempt),
		logger:   cfg.Logger,
	}, nil
}

// CreateTransferRun stores a new transfer run.
func (r *Repository) CreateTransferRun(ctx context.Context, run model.TransferRun) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required: %w", model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; ok {
		return fmt.Errorf("transfer run %s: %w", run.ID, model.ErrAlreadyExists)
	}
	r.runs[run.ID] = run

	r.logger.Debugf("Created transfer run in repository: %s", run.ID)
	return nil
}

// UpdateTransferRun replaces an existing transfer run.
func (r *Repository) UpdateTransferRun(ctx context.Context, run model.TransferRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; !ok {
		return fmt.Errorf("transfer run %s: %w", run.ID, model.ErrNotFound)
	}
	r.runs[run.ID] = run

	r.logger.Debugf("Updated transfer run in repository: %s", run.ID)
	return nil
}

// GetTransferRun returns a transfer run by ID.
func (r *Repository) GetTransferRun(ctx context.Context, id string) (*model.TransferRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("transfer run %s: %w", id, model.ErrNotFound)
	}
	return &run, nil
}

// ListTransferRuns returns the transfer runs, newest first.
func (r *Repository) ListTransferRuns(ctx context.Context, limit int) ([]model.TransferRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]model.TransferRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID > runs[j].ID
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// CreateTransferAttempt stores a new attempt of an existing run.
func (r *Repository) CreateTransferAttempt(ctx context.Context, a model.TransferAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[a.RunID]; !ok {
		return fmt.Errorf("transfer run %s: %w", a.RunID, model.ErrNotFound)
	}
	for _, existing := range r.attempts[a.RunID] {
		if existing.Number == a.Number {
			return fmt.Errorf("attempt %d of run %s: %w", a.Number, a.RunID, model.ErrAlreadyExists)
		}
	}
	r.attempts[a.RunID] = append(r.attempts[a.RunID], a)

	return nil
}

// UpdateTransferAttempt replaces an existing attempt.
func (r *Repository) UpdateTransferAttempt(ctx context.Context, a model.TransferAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempts := r.attempts[a.RunID]
	for i := range attempts {
		if attempts[i].Number == a.Number {
			attempts[i] = a
			return nil
		}
	}

	return fmt.Errorf("attempt %d of run %s: %w", a.Number, a.RunID, model.ErrNotFound)
}

// ListTransferAttempts returns the attempts of a run in order.
func (r *Repository) ListTransferAttempts(ctx context.Context, runID string) ([]model.TransferAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attempts := append([]model.TransferAttempt{}, r.attempts[runID]...)
	sort.Slice(attempts, func(i, j int) bool { return attempts[i].Number < attempts[j].Number })

	return attempts, nil
}
