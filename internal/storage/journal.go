package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/djorgens2/blofin-data/internal/domain"
)

// Journal persists the audit trail of lifecycle runs in SQLite: every state
// transition and every order touched, so a failed run can be reconstructed
// after the process exits.
type Journal struct {
	db *sql.DB
}

// Transition is one recorded lifecycle step.
type Transition struct {
	RunID string
	State string
	Note  string
	Ts    int64
}

// NewJournal opens (or creates) the journal database with WAL mode enabled.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS lifecycle_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			state TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			ts INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create lifecycle_log table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			inst_id TEXT NOT NULL,
			side TEXT NOT NULL,
			price TEXT NOT NULL,
			size TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create orders table: %w", err)
	}

	return &Journal{db: db}, nil
}

// RecordTransition appends one lifecycle state change for a run.
func (j *Journal) RecordTransition(ctx context.Context, runID, state, note string) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO lifecycle_log (run_id, state, note, ts) VALUES (?, ?, ?, ?)",
		runID, state, note, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

// RecordOrder stores a placed order under its exchange identifier.
func (j *Journal) RecordOrder(ctx context.Context, runID string, h domain.OrderHandle, req domain.OrderRequest, status string) error {
	now := time.Now().UnixMilli()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO orders (order_id, run_id, inst_id, side, price, size, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(order_id) DO UPDATE SET status=excluded.status, updated_at=excluded.updated_at`,
		h.OrderID, runID, req.InstID, req.Side, req.Price, req.Size, status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to record order: %w", err)
	}
	return nil
}

// UpdateOrderStatus advances a stored order's status.
func (j *Journal) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	_, err := j.db.ExecContext(ctx,
		"UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?",
		status, time.Now().UnixMilli(), orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// Transitions returns the recorded steps of one run in insertion order.
func (j *Journal) Transitions(ctx context.Context, runID string) ([]Transition, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT run_id, state, note, ts FROM lifecycle_log WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var tr Transition
		if err := rows.Scan(&tr.RunID, &tr.State, &tr.Note, &tr.Ts); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// OrderStatus returns the stored status for one order.
func (j *Journal) OrderStatus(ctx context.Context, orderID string) (string, error) {
	var status string
	err := j.db.QueryRowContext(ctx,
		"SELECT status FROM orders WHERE order_id = ?", orderID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return status, err
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}
