// Package storage persists evaluation runs so downstream analysis and
// plotting tools can consume them without re-running experiments.
// Two backends are provided: a SQLite store for queryable history and a
// JSON file store for one-off runs.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/perturbench/perturbench/internal/domain"
	"github.com/perturbench/perturbench/internal/ports"
)

// schema holds the full DDL for a fresh database.
// relative_drop is nullable: a group with zero clean accuracy has no
// defined drop and stores NULL rather than a sentinel number.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id           TEXT PRIMARY KEY,
    model            TEXT NOT NULL,
    started_at       TEXT NOT NULL,
    finished_at      TEXT NOT NULL,
    diagnostics_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
    run_id            TEXT NOT NULL REFERENCES runs(run_id),
    language          TEXT NOT NULL,
    task              TEXT NOT NULL,
    perturbation_kind TEXT NOT NULL,
    intensity         REAL NOT NULL,
    accuracy          REAL NOT NULL,
    accuracy_clean    REAL NOT NULL,
    macro_f1          REAL NOT NULL,
    relative_drop     REAL,
    consistency       REAL NOT NULL,
    flip_rate         REAL NOT NULL,
    n_samples         INTEGER NOT NULL,
    PRIMARY KEY (run_id, language, task, perturbation_kind, intensity)
);

CREATE TABLE IF NOT EXISTS predictions (
    run_id          TEXT NOT NULL REFERENCES runs(run_id),
    sample_id       TEXT NOT NULL,
    variant_kind    TEXT NOT NULL,
    intensity       REAL NOT NULL,
    gold_label      TEXT NOT NULL,
    predicted_label TEXT NOT NULL,
    confidence      REAL NOT NULL,
    PRIMARY KEY (run_id, sample_id, variant_kind, intensity)
);

CREATE TABLE IF NOT EXISTS flips (
    run_id         TEXT NOT NULL REFERENCES runs(run_id),
    sample_id      TEXT NOT NULL,
    text_clean     TEXT NOT NULL,
    text_perturbed TEXT NOT NULL,
    pred_clean     TEXT NOT NULL,
    pred_perturbed TEXT NOT NULL,
    gold_label     TEXT NOT NULL,
    edit_distance  INTEGER NOT NULL,
    pivot_words    TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS skips (
    run_id       TEXT NOT NULL REFERENCES runs(run_id),
    sample_id    TEXT NOT NULL,
    variant_kind TEXT NOT NULL,
    reason       TEXT NOT NULL
);
`

// SQLiteStore implements ports.ResultStore on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.ResultStore = (*SQLiteStore)(nil)

// OpenSQLite opens or creates a SQLite database at path and applies the
// schema. The parent directory is created if it does not exist.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveReport persists the run header, per-group results, flip records, and
// skip records in a single transaction.
func (s *SQLiteStore) SaveReport(ctx context.Context, report domain.RunReport) error {
	diagnostics, err := json.Marshal(report.Diagnostics)
	if err != nil {
		return fmt.Errorf("marshal diagnostics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs(run_id, model, started_at, finished_at, diagnostics_json)
		 VALUES(?, ?, ?, ?, ?)`,
		report.RunID, report.Model,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.FinishedAt.UTC().Format(time.RFC3339),
		string(diagnostics),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, r := range report.Results {
		var drop sql.NullFloat64
		if r.RelativeDrop != nil {
			drop = sql.NullFloat64{Float64: *r.RelativeDrop, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results(run_id, language, task, perturbation_kind,
			     intensity, accuracy, accuracy_clean, macro_f1, relative_drop,
			     consistency, flip_rate, n_samples)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID, string(r.Language), string(r.Task), string(r.PerturbationKind),
			r.Intensity, r.Accuracy, r.AccuracyClean, r.MacroF1, drop,
			r.Consistency, r.FlipRate, r.NSamples,
		); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
	}

	for _, f := range report.Flips {
		pivotWords, err := json.Marshal(f.PivotWordsChanged)
		if err != nil {
			return fmt.Errorf("marshal pivot words: %w", err)
		}
		if f.PivotWordsChanged == nil {
			pivotWords = []byte("[]")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO flips(run_id, sample_id, text_clean, text_perturbed,
			     pred_clean, pred_perturbed, gold_label, edit_distance, pivot_words)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID, f.SampleID, f.TextClean, f.TextPerturbed,
			f.PredClean, f.PredPerturbed, f.GoldLabel, f.EditDistance,
			string(pivotWords),
		); err != nil {
			return fmt.Errorf("insert flip: %w", err)
		}
	}

	for _, sk := range report.Skips {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skips(run_id, sample_id, variant_kind, reason)
			 VALUES(?, ?, ?, ?)`,
			report.RunID, sk.SampleID, sk.VariantKind, sk.Reason,
		); err != nil {
			return fmt.Errorf("insert skip: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SavePredictions persists raw per-variant predictions for a run.
// Predictions arrive in worker batches, so this may be called several times
// for the same run.
func (s *SQLiteStore) SavePredictions(ctx context.Context, runID string, records []domain.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO predictions(run_id, sample_id, variant_kind, intensity, gold_label, predicted_label, confidence)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			runID, rec.SampleID, rec.VariantKind, rec.Intensity,
			rec.GoldLabel, rec.PredictedLabel, rec.Confidence,
		); err != nil {
			return fmt.Errorf("insert prediction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// LoadReport reads a previously saved run back from the database.
// It exists for post-hoc analysis tooling; the evaluator never reads.
func (s *SQLiteStore) LoadReport(ctx context.Context, runID string) (domain.RunReport, error) {
	var report domain.RunReport
	var startedAt, finishedAt, diagnostics string

	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, model, started_at, finished_at, diagnostics_json
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&report.RunID, &report.Model, &startedAt, &finishedAt, &diagnostics)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("load run: %w", err)
	}
	if err := json.Unmarshal([]byte(diagnostics), &report.Diagnostics); err != nil {
		return domain.RunReport{}, fmt.Errorf("unmarshal diagnostics: %w", err)
	}
	report.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	report.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT language, task, perturbation_kind, intensity, accuracy,
		        accuracy_clean, macro_f1, relative_drop, consistency,
		        flip_rate, n_samples
		 FROM results WHERE run_id = ?
		 ORDER BY language, task, perturbation_kind, intensity`, runID)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.EvaluationResult
		var lang, task, kind string
		var drop sql.NullFloat64
		if err := rows.Scan(&lang, &task, &kind, &r.Intensity, &r.Accuracy,
			&r.AccuracyClean, &r.MacroF1, &drop, &r.Consistency,
			&r.FlipRate, &r.NSamples); err != nil {
			return domain.RunReport{}, fmt.Errorf("scan result: %w", err)
		}
		r.Language = domain.Language(lang)
		r.Task = domain.Task(task)
		r.PerturbationKind = domain.PerturbationKind(kind)
		if drop.Valid {
			v := drop.Float64
			r.RelativeDrop = &v
		}
		report.Results = append(report.Results, r)
	}
	if err := rows.Err(); err != nil {
		return domain.RunReport{}, fmt.Errorf("load results: %w", err)
	}

	report.Flips, err = s.loadFlips(ctx, runID)
	if err != nil {
		return domain.RunReport{}, err
	}
	return report, nil
}

func (s *SQLiteStore) loadFlips(ctx context.Context, runID string) ([]domain.FlipRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sample_id, text_clean, text_perturbed, pred_clean,
		        pred_perturbed, gold_label, edit_distance, pivot_words
		 FROM flips WHERE run_id = ? ORDER BY sample_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("load flips: %w", err)
	}
	defer rows.Close()

	var flips []domain.FlipRecord
	for rows.Next() {
		var f domain.FlipRecord
		var pivotWords string
		if err := rows.Scan(&f.SampleID, &f.TextClean, &f.TextPerturbed,
			&f.PredClean, &f.PredPerturbed, &f.GoldLabel, &f.EditDistance,
			&pivotWords); err != nil {
			return nil, fmt.Errorf("scan flip: %w", err)
		}
		if pivotWords != "[]" {
			if err := json.Unmarshal([]byte(pivotWords), &f.PivotWordsChanged); err != nil {
				return nil, fmt.Errorf("unmarshal pivot words: %w", err)
			}
		}
		flips = append(flips, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load flips: %w", err)
	}
	return flips, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
