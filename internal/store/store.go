// Package store is the SQLite registry of training runs. Each run keeps its
// full record as JSON and, optionally, the model artifact it produced.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/toolcrib/vbwear/api/v1alpha1"
	"github.com/toolcrib/vbwear/internal/logging"
)

// ErrNotFound is returned for an unknown run ID.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	dataset      TEXT NOT NULL,
	phase        TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	best_fitness REAL,
	test_rmse    REAL,
	record       TEXT NOT NULL,
	artifact     BLOB
)`

// Summary is one row of List.
type Summary struct {
	ID          string
	Dataset     string
	Phase       v1alpha1.RunPhase
	StartTime   time.Time
	BestFitness float64
	TestRMSE    float64
	HasModel    bool
}

// Store is a run registry backed by one SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the registry at path. ":memory:" gives a private
// in-memory registry.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening run store %s: %w", path, err)
	}
	// one connection serialises writers and keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening run store %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating run table: %w", err)
	}
	logging.FromContext(ctx).V(logging.DEBUG).Info("Opened run store", "path", path)
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces run. A nil artifact keeps the stored one.
func (s *Store) Save(ctx context.Context, run *v1alpha1.TrainingRun, artifact []byte) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run must have an ID")
	}
	var blob any
	if artifact != nil {
		blob = artifact
	}
	record, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run %s: %w", run.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs (id, dataset, phase, started_at, best_fitness, test_rmse, record, artifact)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	dataset = excluded.dataset,
	phase = excluded.phase,
	started_at = excluded.started_at,
	best_fitness = excluded.best_fitness,
	test_rmse = excluded.test_rmse,
	record = excluded.record,
	artifact = COALESCE(excluded.artifact, runs.artifact)`,
		run.ID,
		run.Spec.Dataset,
		string(run.Status.Phase),
		run.Status.StartTime.UTC().Format(time.RFC3339Nano),
		run.Status.Search.BestFitness,
		run.Status.Test.RMSE,
		string(record),
		blob,
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

// Get returns the record of run id.
func (s *Store) Get(ctx context.Context, id string) (*v1alpha1.TrainingRun, error) {
	var record string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM runs WHERE id = ?`, id).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", id, err)
	}
	run := &v1alpha1.TrainingRun{}
	if err := json.Unmarshal([]byte(record), run); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", id, err)
	}
	return run, nil
}

// Artifact returns the model artifact stored with run id, or nil when the run
// has none.
func (s *Store) Artifact(ctx context.Context, id string) ([]byte, error) {
	var artifact []byte
	err := s.db.QueryRowContext(ctx, `SELECT artifact FROM runs WHERE id = ?`, id).Scan(&artifact)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading artifact of run %s: %w", id, err)
	}
	return artifact, nil
}

// List returns every run, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, dataset, phase, started_at, COALESCE(best_fitness, 0), COALESCE(test_rmse, 0), artifact IS NOT NULL
FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			phase   string
			started string
		)
		if err := rows.Scan(&sum.ID, &sum.Dataset, &phase, &started, &sum.BestFitness, &sum.TestRMSE, &sum.HasModel); err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		sum.Phase = v1alpha1.RunPhase(phase)
		if sum.StartTime, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s has a bad start time %q: %w", sum.ID, started, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
