// Package storage has the transfer journal persistence. The journal is the local
// history of the transfer runs and their task attempts.
package storage

import (
	"context"

	"github.com/slok/xferctl/internal/model"
)

// TransferRepository is the interface for transfer journal persistence.
type TransferRepository interface {
	CreateTransferRun(ctx context.Context, r model.TransferRun) error
	UpdateTransferRun(ctx context.Context, r model.TransferRun) error
	GetTransferRun(ctx context.Context, id string) (*model.TransferRun, error)
	// ListTransferRuns returns the runs, newest first. A limit of 0 or less returns all.
	ListTransferRuns(ctx context.Context, limit int) ([]model.TransferRun, error)

	CreateTransferAttempt(ctx context.Context, a model.TransferAttempt) error
	UpdateTransferAttempt(ctx context.Context, a model.TransferAttempt) error
	// ListTransferAttempts returns the attempts of a run in attempt order.
	ListTransferAttempts(ctx context.Context, runID string) ([]model.TransferAttempt, error)
}

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name TransferRepository
