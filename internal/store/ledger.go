package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger accumulates per-call token usage and cost in a local SQLite
// database, aggregated per (provider, model) pair.
type Ledger struct {
	db *sql.DB
}

// UsageRow is the accumulated usage for one (provider, model) pair.
type UsageRow struct {
	ProviderID   string
	ModelID      string
	Calls        int64
	InputTokens  int64
	OutputTokens int64
	Cost         float64
	UpdatedAt    time.Time
}

// UsageTotals is the sum across all providers and models.
type UsageTotals struct {
	Calls        int64
	InputTokens  int64
	OutputTokens int64
	Cost         float64
}

// OpenLedger opens (creating if needed) the ledger database under dataDir
// and applies the schema.
func OpenLedger(dataDir string) (*Ledger, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "switchboard.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

// NewLedger wraps an existing database handle without running migrations.
// Used by tests that substitute a mock driver.
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage (
		provider_id TEXT NOT NULL,
		model_id TEXT NOT NULL,
		calls INTEGER NOT NULL DEFAULT 0,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		cost REAL NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (provider_id, model_id)
	);

	CREATE INDEX IF NOT EXISTS idx_usage_updated ON usage(updated_at DESC);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record adds one call's usage to the (provider, model) aggregate. Sums are
// additive on conflict so concurrent writers never lose counts.
func (l *Ledger) Record(ctx context.Context, providerID, modelID string, inputTokens, outputTokens int64, cost float64) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO usage (provider_id, model_id, calls, input_tokens, output_tokens, cost, updated_at)
		VALUES (?, ?, 1, ?, ?, ?, ?)
		ON CONFLICT(provider_id, model_id) DO UPDATE SET
			calls = calls + 1,
			input_tokens = input_tokens + excluded.input_tokens,
			output_tokens = output_tokens + excluded.output_tokens,
			cost = cost + excluded.cost,
			updated_at = excluded.updated_at
	`, providerID, modelID, inputTokens, outputTokens, cost, time.Now())
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// ByModel returns per (provider, model) aggregates ordered by cost,
// most expensive first.
func (l *Ledger) ByModel(ctx context.Context) ([]UsageRow, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT provider_id, model_id, calls, input_tokens, output_tokens, cost, updated_at
		FROM usage ORDER BY cost DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var result []UsageRow
	for rows.Next() {
		var r UsageRow
		if err := rows.Scan(&r.ProviderID, &r.ModelID, &r.Calls, &r.InputTokens, &r.OutputTokens, &r.Cost, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Totals returns the grand totals across all providers and models.
func (l *Ledger) Totals(ctx context.Context) (*UsageTotals, error) {
	var t UsageTotals
	err := l.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(calls), 0), COALESCE(SUM(input_tokens), 0),
			   COALESCE(SUM(output_tokens), 0), COALESCE(SUM(cost), 0)
		FROM usage
	`).Scan(&t.Calls, &t.InputTokens, &t.OutputTokens, &t.Cost)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	return &t, nil
}
