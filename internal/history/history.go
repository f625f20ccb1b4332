// Package history stores completed optimization runs in PostgreSQL.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/ats-resume-builder/internal/types"
)

const (
	// DefaultListLimit is used when ListRuns is called without a positive limit.
	DefaultListLimit = 20
	// MaxListLimit caps a single page of runs.
	MaxListLimit = 100
)

// ErrNotFound is returned by GetRun for unknown ids.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS optimization_runs (
	id            UUID PRIMARY KEY,
	model         TEXT NOT NULL,
	ats_score     INTEGER NOT NULL,
	fallback      BOOLEAN NOT NULL DEFAULT FALSE,
	prompt_tokens INTEGER NOT NULL DEFAULT 0,
	duration_ms   BIGINT NOT NULL DEFAULT 0,
	job_digest    TEXT NOT NULL,
	result        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS optimization_runs_created_at_idx ON optimization_runs (created_at DESC);
`

// Store wraps a PostgreSQL connection pool
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the runs table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RecordRun inserts a completed run. A nil ID is replaced with a new one and a
// zero CreatedAt with the current time.
func (s *Store) RecordRun(ctx context.Context, run *types.RunDetail) error {
	if run == nil || run.Result == nil {
		return errors.New("run and result are required")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	result, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO optimization_runs
		   (id, model, ats_score, fallback, prompt_tokens, duration_ms, job_digest, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.Model, run.ATSScore, run.Fallback, run.PromptTokens, run.DurationMS,
		run.JobDigest, result, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// GetRun retrieves a run and its result by ID
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*types.RunDetail, error) {
	var run types.RunDetail
	var result []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, model, ats_score, fallback, prompt_tokens, duration_ms, job_digest, created_at, result
		 FROM optimization_runs WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.Model, &run.ATSScore, &run.Fallback, &run.PromptTokens,
		&run.DurationMS, &run.JobDigest, &run.CreatedAt, &result)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Result = &types.OptimizedResume{}
	if err := json.Unmarshal(result, run.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves the most recent runs, newest first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]types.RunSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, model, ats_score, fallback, prompt_tokens, duration_ms, job_digest, created_at
		 FROM optimization_runs ORDER BY created_at DESC LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []types.RunSummary{}
	for rows.Next() {
		var run types.RunSummary
		if err := rows.Scan(&run.ID, &run.Model, &run.ATSScore, &run.Fallback, &run.PromptTokens,
			&run.DurationMS, &run.JobDigest, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
