package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/xferctl/internal/log"
	"github.com/slok/xferctl/internal/model"
	"github.com/slok/xferctl/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.TransferRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository opens (creating it if missing) the journal database and migrates it.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(migrations.MigratorConfig{DB: db, Logger: cfg.Logger})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite journal initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateTransferRun stores a new transfer run.
func (r *Repository) CreateTransferRun(ctx context.Context, run model.TransferRun) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required: %w", model.ErrNotValid)
	}

	query := `
		INSERT INTO transfer_runs (
			id, source_endpoint, destination_endpoint,
			manifest_path, label,
			retry_limit, attempts, status, error,
			created_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.SourceEndpoint,
		run.DestinationEndpoint,
		run.ManifestPath,
		run.Label,
		run.RetryLimit,
		run.Attempts,
		run.Status,
		run.Error,
		run.CreatedAt.Unix(),
		unixOrNil(run.FinishedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: transfer_runs.") {
			return fmt.Errorf("transfer run %s: %w", run.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert transfer run: %w", err)
	}

	r.logger.Debugf("Created transfer run in repository: %s", run.ID)
	return nil
}

// UpdateTransferRun updates an existing transfer run.
func (r *Repository) UpdateTransferRun(ctx context.Context, run model.TransferRun) error {
	query := `
		UPDATE transfer_runs
		SET
			source_endpoint = ?,
			destination_endpoint = ?,
			manifest_path = ?,
			label = ?,
			retry_limit = ?,
			attempts = ?,
			status = ?,
			error = ?,
			created_at = ?,
			finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		run.SourceEndpoint,
		run.DestinationEndpoint,
		run.ManifestPath,
		run.Label,
		run.RetryLimit,
		run.Attempts,
		run.Status,
		run.Error,
		run.CreatedAt.Unix(),
		unixOrNil(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update transfer run: %w", err)
	}

	if err := expectAffected(result); err != nil {
		return fmt.Errorf("transfer run %s: %w", run.ID, err)
	}

	r.logger.Debugf("Updated transfer run in repository: %s", run.ID)
	return nil
}

const selectRuns = `
	SELECT
		id, source_endpoint, destination_endpoint,
		manifest_path, label,
		retry_limit, attempts, status, error,
		created_at, finished_at
	FROM transfer_runs
`

// GetTransferRun retrieves a transfer run by ID.
func (r *Repository) GetTransferRun(ctx context.Context, id string) (*model.TransferRun, error) {
	run, err := scanRun(r.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transfer run %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query transfer run: %w", err)
	}

	return &run, nil
}

// ListTransferRuns returns the transfer runs, newest first.
func (r *Repository) ListTransferRuns(ctx context.Context, limit int) ([]model.TransferRun, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, selectRuns+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("could not query transfer runs: %w", err)
	}
	defer rows.Close()

	runs := []model.TransferRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

// CreateTransferAttempt stores a new attempt of an existing run.
func (r *Repository) CreateTransferAttempt(ctx context.Context, a model.TransferAttempt) error {
	query := `
		INSERT INTO transfer_attempts (run_id, number, task_id, status, submitted_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, a.RunID, a.Number, a.TaskID, a.Status, a.SubmittedAt.Unix(), unixOrNil(a.FinishedAt))
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed: transfer_attempts."):
			return fmt.Errorf("attempt %d of run %s: %w", a.Number, a.RunID, model.ErrAlreadyExists)
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return fmt.Errorf("transfer run %s: %w", a.RunID, model.ErrNotFound)
		}
		return fmt.Errorf("could not insert transfer attempt: %w", err)
	}

	return nil
}

// UpdateTransferAttempt updates an existing attempt.
func (r *Repository) UpdateTransferAttempt(ctx context.Context, a model.TransferAttempt) error {
	query := `
		UPDATE transfer_attempts
		SET task_id = ?, status = ?, submitted_at = ?, finished_at = ?
		WHERE run_id = ? AND number = ?
	`

	result, err := r.db.ExecContext(ctx, query, a.TaskID, a.Status, a.SubmittedAt.Unix(), unixOrNil(a.FinishedAt), a.RunID, a.Number)
	if err != nil {
		return fmt.Errorf("could not update transfer attempt: %w", err)
	}

	if err := expectAffected(result); err != nil {
		return fmt.Errorf("attempt %d of run %s: %w", a.Number, a.RunID, err)
	}

	return nil
}

// ListTransferAttempts returns the attempts of a run in order.
func (r *Repository) ListTransferAttempts(ctx context.Context, runID string) ([]model.TransferAttempt, error) {
	query := `
		SELECT run_id, number, task_id, status, submitted_at, finished_at
		FROM transfer_attempts
		WHERE run_id = ?
		ORDER BY number ASC
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("could not query transfer attempts: %w", err)
	}
	defer rows.Close()

	attempts := []model.TransferAttempt{}
	for rows.Next() {
		var a model.TransferAttempt
		var submittedAt int64
		var finishedAt sql.NullInt64
		if err := rows.Scan(&a.RunID, &a.Number, &a.TaskID, &a.Status, &submittedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		a.SubmittedAt = timeFromUnix(submittedAt)
		a.FinishedAt = timePtrFromNull(finishedAt)
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return attempts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (model.TransferRun, error) {
	var run model.TransferRun
	var createdAt int64
	var finishedAt sql.NullInt64

	err := s.Scan(
		&run.ID,
		&run.SourceEndpoint,
		&run.DestinationEndpoint,
		&run.ManifestPath,
		&run.Label,
		&run.RetryLimit,
		&run.Attempts,
		&run.Status,
		&run.Error,
		&createdAt,
		&finishedAt,
	)
	if err != nil {
		return model.TransferRun{}, err
	}

	run.CreatedAt = timeFromUnix(createdAt)
	run.FinishedAt = timePtrFromNull(finishedAt)

	return run, nil
}

func expectAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFound
	}
	return nil
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timePtrFromNull(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := timeFromUnix(n.Int64)
	return &t
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
