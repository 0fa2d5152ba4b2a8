package audit

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is the metadata recorded for one merge. Report contents are never stored.
type Run struct {
	ID               string     `json:"run_id"`
	Source           string     `json:"source"`
	Filename         string     `json:"filename"`
	OrderRows        int        `json:"order_rows"`
	OutputRows       int        `json:"output_rows"`
	MatchedShipments int        `json:"matched_shipments"`
	MatchedInvoices  int        `json:"matched_invoices"`
	Status           string     `json:"status"`
	Error            string     `json:"error,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store writes run metadata to the merge_runs table.
type Store struct {
	db dbtx
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// DSNFromEnv builds a postgres URL from DB_USER, DB_PASSWORD, DB_HOST,
// DB_PORT and DB_NAME. ok is false unless all are set.
func DSNFromEnv() (dsn string, ok bool) {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if user == "" || pass == "" || host == "" || port == "" || name == "" {
		return "", false
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, name), true
}

const createRunsTable = `
	CREATE TABLE IF NOT EXISTS merge_runs (
		run_id            TEXT PRIMARY KEY,
		source            TEXT NOT NULL,
		filename          TEXT NOT NULL DEFAULT '',
		order_rows        INTEGER NOT NULL DEFAULT 0,
		output_rows       INTEGER NOT NULL DEFAULT 0,
		matched_shipments INTEGER NOT NULL DEFAULT 0,
		matched_invoices  INTEGER NOT NULL DEFAULT 0,
		status            TEXT NOT NULL,
		error             TEXT NOT NULL DEFAULT '',
		started_at        TIMESTAMPTZ NOT NULL,
		finished_at       TIMESTAMPTZ
	)`

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("create merge_runs: %w", err)
	}
	return nil
}

// Start inserts the run with status running.
func (s *Store) Start(ctx context.Context, run Run) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO merge_runs (run_id, source, status, started_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id) DO UPDATE SET source = EXCLUDED.source, status = EXCLUDED.status,
			started_at = EXCLUDED.started_at, finished_at = NULL, error = ''`,
		run.ID, run.Source, StatusRunning, run.StartedAt)
	if err != nil {
		return fmt.Errorf("insert merge run %s: %w", run.ID, err)
	}
	return nil
}

// Finish records the outcome of a run.
func (s *Store) Finish(ctx context.Context, run Run) error {
	_, err := s.db.Exec(ctx, `
		UPDATE merge_runs
		SET filename = $2, order_rows = $3, output_rows = $4, matched_shipments = $5,
			matched_invoices = $6, status = $7, error = $8, finished_at = $9
		WHERE run_id = $1`,
		run.ID, run.Filename, run.OrderRows, run.OutputRows, run.MatchedShipments,
		run.MatchedInvoices, run.Status, run.Error, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("update merge run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.Query(ctx, `
		SELECT run_id, source, filename, order_rows, output_rows, matched_shipments,
			matched_invoices, status, error, started_at, finished_at
		FROM merge_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query merge runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.Filename, &r.OrderRows, &r.OutputRows,
			&r.MatchedShipments, &r.MatchedInvoices, &r.Status, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan merge run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
