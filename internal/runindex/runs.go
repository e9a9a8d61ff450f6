package runindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run statuses.
const (
	StatusActive   = "active"
	StatusFinished = "finished"
)

// ErrNotFound indicates no run row matched the query.
var ErrNotFound = errors.New("run not found")

// Run is one tracked run workspace.
type Run struct {
	RunID     string
	Workdir   string
	AgentID   string
	Stage     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// RunStarted records a freshly created run workspace.
func (s *Store) RunStarted(ctx context.Context, runID, workdir string) error {
	now := timestamp()
	return s.withLock(func() error {
		err := s.execWithRetry(ctx,
			`INSERT INTO runs (run_id, workdir, stage, status, created_at, updated_at)
             VALUES (?, ?, 'A', ?, ?, ?)`,
			runID, workdir, StatusActive, now, now)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

// RunAdvanced upserts the latest known stage for a run. The agent id becomes
// known once a blueprint validates; earlier calls pass an empty string, which
// leaves the stored value alone.
func (s *Store) RunAdvanced(ctx context.Context, runID, agentID, stage, status string) error {
	return s.withLock(func() error {
		err := s.execWithRetry(ctx,
			`UPDATE runs
             SET agent_id = CASE WHEN ? != '' THEN ? ELSE agent_id END,
                 stage = ?, status = ?, updated_at = ?
             WHERE run_id = ?`,
			agentID, agentID, stage, status, timestamp(), runID)
		if err != nil {
			return fmt.Errorf("update run %s: %w", runID, err)
		}
		return nil
	})
}

// RunFinished marks a run finished. The row is kept for history.
func (s *Store) RunFinished(ctx context.Context, runID string) error {
	return s.withLock(func() error {
		err := s.execWithRetry(ctx,
			`UPDATE runs SET status = ?, updated_at = ? WHERE run_id = ?`,
			StatusFinished, timestamp(), runID)
		if err != nil {
			return fmt.Errorf("finish run %s: %w", runID, err)
		}
		return nil
	})
}

const runColumns = "run_id, workdir, agent_id, stage, status, created_at, updated_at"

func scanRun(scanner interface{ Scan(...any) error }) (Run, error) {
	var run Run
	var created, updated string
	if err := scanner.Scan(&run.RunID, &run.Workdir, &run.AgentID, &run.Stage, &run.Status, &created, &updated); err != nil {
		return Run{}, err
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	run.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return run, nil
}

// List returns all known runs, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Run, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns one run by id.
func (s *Store) Get(ctx context.Context, runID string) (Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return run, nil
}

// MostRecentActive returns the active run with the newest update, for status
// invocations that omit --workdir.
func (s *Store) MostRecentActive(ctx context.Context) (Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE status = ? ORDER BY updated_at DESC LIMIT 1",
		StatusActive)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("most recent active run: %w", err)
	}
	return run, nil
}
