package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("merge run not found")

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Inputs are the files a merge run reads and writes.
type Inputs struct {
	Dataset       string
	Output        string
	TDMDir        string
	TDMAnnotation string
	PDBIDMap      string
	PDBAnnotation string
}

// Summary holds the per-stage counts of a run.
type Summary struct {
	Families     int
	Structures   int
	TDMGenes     int
	TDMHits      int
	PDBGenes     int
	PDBHits      int
	Lines        int
	Records      int
	WithPDB      int
	With3DM      int
	PDBUnlabeled int
}

// Run is one row of the ledger.
type Run struct {
	ID         string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt *time.Time
	Inputs     Inputs
	Summary    Summary
	Error      string
}

// Ledger records merge runs in a SQLite database.
type Ledger struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS merge_runs (
		run_id         TEXT PRIMARY KEY,
		status         TEXT NOT NULL,
		started_at     INTEGER NOT NULL,
		finished_at    INTEGER,
		dataset        TEXT NOT NULL,
		output         TEXT NOT NULL,
		tdm_dir        TEXT NOT NULL,
		tdm_annotation TEXT NOT NULL,
		pdb_idmap      TEXT NOT NULL,
		pdb_annotation TEXT NOT NULL,
		families       INTEGER NOT NULL DEFAULT 0,
		structures     INTEGER NOT NULL DEFAULT 0,
		tdm_genes      INTEGER NOT NULL DEFAULT 0,
		tdm_hits       INTEGER NOT NULL DEFAULT 0,
		pdb_genes      INTEGER NOT NULL DEFAULT 0,
		pdb_hits       INTEGER NOT NULL DEFAULT 0,
		lines          INTEGER NOT NULL DEFAULT 0,
		records        INTEGER NOT NULL DEFAULT 0,
		with_pdb       INTEGER NOT NULL DEFAULT 0,
		with_3dm       INTEGER NOT NULL DEFAULT 0,
		pdb_unlabeled  INTEGER NOT NULL DEFAULT 0,
		error          TEXT NOT NULL DEFAULT ''
	);
`

// OpenLedger opens (creating if needed) the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; the ledger is touched a handful of times per run.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create merge_runs: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Begin stores a new running entry and returns its id.
func (l *Ledger) Begin(ctx context.Context, in Inputs) (string, error) {
	id := uuid.New().String()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO merge_runs (run_id, status, started_at, dataset, output, tdm_dir, tdm_annotation, pdb_idmap, pdb_annotation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, RunRunning, time.Now().UnixNano(),
		in.Dataset, in.Output, in.TDMDir, in.TDMAnnotation, in.PDBIDMap, in.PDBAnnotation,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Finish records the outcome of a run. A non-nil runErr marks it failed.
func (l *Ledger) Finish(ctx context.Context, runID string, s Summary, runErr error) error {
	status := RunCompleted
	msg := ""
	if runErr != nil {
		status = RunFailed
		msg = runErr.Error()
	}

	res, err := l.db.ExecContext(ctx, `
		UPDATE merge_runs SET status = ?, finished_at = ?,
			families = ?, structures = ?, tdm_genes = ?, tdm_hits = ?, pdb_genes = ?, pdb_hits = ?,
			lines = ?, records = ?, with_pdb = ?, with_3dm = ?, pdb_unlabeled = ?, error = ?
		WHERE run_id = ?`,
		status, time.Now().UnixNano(),
		s.Families, s.Structures, s.TDMGenes, s.TDMHits, s.PDBGenes, s.PDBHits,
		s.Lines, s.Records, s.WithPDB, s.With3DM, s.PDBUnlabeled, msg,
		runID,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

const selectRun = `
	SELECT run_id, status, started_at, finished_at, dataset, output, tdm_dir, tdm_annotation, pdb_idmap, pdb_annotation,
		families, structures, tdm_genes, tdm_hits, pdb_genes, pdb_hits,
		lines, records, with_pdb, with_3dm, pdb_unlabeled, error
	FROM merge_runs`

func (l *Ledger) Get(ctx context.Context, runID string) (*Run, error) {
	row := l.db.QueryRowContext(ctx, selectRun+` WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return r, err
}

// List returns the most recent runs first.
func (l *Ledger) List(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := l.db.QueryContext(ctx, selectRun+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		r        Run
		status   string
		started  int64
		finished sql.NullInt64
	)
	err := s.Scan(
		&r.ID, &status, &started, &finished,
		&r.Inputs.Dataset, &r.Inputs.Output, &r.Inputs.TDMDir, &r.Inputs.TDMAnnotation, &r.Inputs.PDBIDMap, &r.Inputs.PDBAnnotation,
		&r.Summary.Families, &r.Summary.Structures, &r.Summary.TDMGenes, &r.Summary.TDMHits, &r.Summary.PDBGenes, &r.Summary.PDBHits,
		&r.Summary.Lines, &r.Summary.Records, &r.Summary.WithPDB, &r.Summary.With3DM, &r.Summary.PDBUnlabeled, &r.Error,
	)
	if err != nil {
		return nil, err
	}
	r.Status = RunStatus(status)
	r.StartedAt = time.Unix(0, started)
	if finished.Valid {
		t := time.Unix(0, finished.Int64)
		r.FinishedAt = &t
	}
	return &r, nil
}
