package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/dyike/hedgehog/internal/models"
)

const dsnPragmas = "_journal_mode=WAL&_busy_timeout=3000&_synchronous=NORMAL&_foreign_keys=on"

const (
	StatusDone  = "done"
	StatusError = "error"
)

// Store keeps the history of workflow runs in SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

type RunRecord struct {
	RowID      int64
	ID         string
	Status     string
	Error      string
	Steps      []string
	StartedAt  time.Time
	FinishedAt time.Time
}

type ResultRecord struct {
	Seq         int
	Stage       string
	Persona     string
	Payload     json.RawMessage
	CompletedAt time.Time
}

// RunDetail is a stored run with its decision and analysis results.
type RunDetail struct {
	RunRecord
	Decision *models.InvestmentDecision
	Results  []ResultRecord
}

func Open(dbPath string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite3", dbPath+"?"+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger.Named("storage")}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    steps_json TEXT NOT NULL DEFAULT '[]',
    decision_json TEXT,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    stage TEXT NOT NULL,
    persona TEXT NOT NULL,
    payload_json TEXT NOT NULL,
    completed_at TEXT NOT NULL,
    PRIMARY KEY (run_id, seq)
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SaveRun stores a finished run. runErr marks the run as failed; the results
// recorded before the failure are kept.
func (s *Store) SaveRun(ctx context.Context, state *models.RunState, runErr error) error {
	if state == nil || strings.TrimSpace(state.RunID) == "" {
		return fmt.Errorf("run id is required")
	}

	status, errText := StatusDone, ""
	if runErr != nil {
		status, errText = StatusError, runErr.Error()
	}
	steps, err := json.Marshal(state.Steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}
	var decision sql.NullString
	if state.Decision != nil {
		data, err := json.Marshal(state.Decision)
		if err != nil {
			return fmt.Errorf("encode decision: %w", err)
		}
		decision = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, status, error, steps_json, decision_json, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    status=excluded.status,
    error=excluded.error,
    steps_json=excluded.steps_json,
    decision_json=excluded.decision_json,
    finished_at=excluded.finished_at
`, state.RunID, status, errText, string(steps), decision,
		formatTime(state.StartedAt), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE run_id = ?`, state.RunID); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	for i, r := range state.Results {
		payload, err := json.Marshal(r.Result)
		if err != nil {
			return fmt.Errorf("encode result of %s: %w", r.Stage, err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO results (run_id, seq, stage, persona, payload_json, completed_at)
VALUES (?, ?, ?, ?, ?, ?)
`, state.RunID, i+1, r.Stage, r.Persona.String(), string(payload), formatTime(r.CompletedAt))
		if err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	s.logger.Debug("run saved", zap.String("run_id", state.RunID), zap.String("status", status))
	return nil
}

// ListRuns lists runs newest first. cursor is the RowID of the last run of
// the previous page, 0 for the first page.
func (s *Store) ListRuns(ctx context.Context, cursor int64, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT rowid, id, status, error, steps_json, started_at, finished_at
FROM runs
WHERE (? = 0 OR rowid < ?)
ORDER BY rowid DESC
LIMIT ?
`, cursor, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs rows: %w", err)
	}
	return runs, nil
}

// GetRun returns nil when no run has the id.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunDetail, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("run id is required")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT rowid, id, status, error, steps_json, started_at, finished_at, decision_json
FROM runs
WHERE id = ?
LIMIT 1
`, runID)

	var decision sql.NullString
	rec, err := scanRun(row, &decision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	detail := &RunDetail{RunRecord: *rec}
	if decision.Valid {
		detail.Decision = &models.InvestmentDecision{}
		if err := json.Unmarshal([]byte(decision.String), detail.Decision); err != nil {
			return nil, fmt.Errorf("decode decision: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT seq, stage, persona, payload_json, completed_at
FROM results
WHERE run_id = ?
ORDER BY seq ASC
`, runID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r         ResultRecord
			payload   string
			completed string
		)
		if err := rows.Scan(&r.Seq, &r.Stage, &r.Persona, &payload, &completed); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Payload = json.RawMessage(payload)
		r.CompletedAt = parseTime(completed)
		detail.Results = append(detail.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list results rows: %w", err)
	}
	return detail, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, extra ...any) (*RunRecord, error) {
	var (
		rec               RunRecord
		steps             string
		started, finished string
	)
	dest := append([]any{&rec.RowID, &rec.ID, &rec.Status, &rec.Error, &steps, &started, &finished}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(steps), &rec.Steps); err != nil {
		return nil, fmt.Errorf("decode steps of %s: %w", rec.ID, err)
	}
	rec.StartedAt = parseTime(started)
	rec.FinishedAt = parseTime(finished)
	return &rec, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
