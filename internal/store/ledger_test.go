package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// TestLedger_Record verifies the additive upsert statement and its bound
// arguments.
func TestLedger_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO usage").
		WithArgs("groq", "llama-3.3-70b", int64(120), int64(45), 0.0021, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ledger := NewLedger(db)
	if err := ledger.Record(context.Background(), "groq", "llama-3.3-70b", 120, 45, 0.0021); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestLedger_Totals verifies the aggregate query and scan.
func TestLedger_Totals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"calls", "input", "output", "cost"}).
		AddRow(7, 1200, 850, 0.0345)
	mock.ExpectQuery("SELECT COALESCE").WillReturnRows(rows)

	ledger := NewLedger(db)
	totals, err := ledger.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}

	if totals.Calls != 7 {
		t.Errorf("Calls = %d, want 7", totals.Calls)
	}
	if totals.InputTokens != 1200 || totals.OutputTokens != 850 {
		t.Errorf("tokens = (%d, %d), want (1200, 850)", totals.InputTokens, totals.OutputTokens)
	}
	if totals.Cost != 0.0345 {
		t.Errorf("Cost = %v, want 0.0345", totals.Cost)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestLedger_ByModel verifies row scanning and ordering intent (the query
// asks for cost descending; the mock just returns rows in that order).
func TestLedger_ByModel(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"provider_id", "model_id", "calls", "input_tokens", "output_tokens", "cost", "updated_at"}).
		AddRow("openai", "gpt-4.1", 3, 900, 400, 0.05, now).
		AddRow("groq", "llama-3.3-70b", 2, 300, 120, 0.001, now)
	mock.ExpectQuery("SELECT provider_id, model_id").WillReturnRows(rows)

	ledger := NewLedger(db)
	result, err := ledger.ByModel(context.Background())
	if err != nil {
		t.Fatalf("ByModel: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("len(result) = %d, want 2", len(result))
	}
	if result[0].ProviderID != "openai" || result[0].Cost != 0.05 {
		t.Errorf("first row = %+v, want openai at 0.05", result[0])
	}
	if result[1].ModelID != "llama-3.3-70b" {
		t.Errorf("second row model = %q, want llama-3.3-70b", result[1].ModelID)
	}
}
