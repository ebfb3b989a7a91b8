package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakout20/internal/engine"
	"breakout20/types"
)

func newTestJournal(t *testing.T) (*SQLiteJournal, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "runs.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func testSummary() engine.Summary {
	return engine.Summary{
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		StartValue:     1000000,
		EndValue:       1150000,
		TotalTrades:    3,
		SharpeRatio:    1.2,
		MaxDrawdownPct: 8.5,
	}
}

func TestSchemaCreated(t *testing.T) {
	j, path := newTestJournal(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','trades','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())
	assert.True(t, found["runs"])
	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestRecordRun(t *testing.T) {
	j, _ := newTestJournal(t)

	runID, err := j.RecordRun(testSummary(), 1000000, "cash: 1000000\n")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	var trades int
	var finalValue float64
	row := j.db.QueryRow(`SELECT total_trades, final_value FROM runs WHERE id = ?`, runID)
	require.NoError(t, row.Scan(&trades, &finalValue))
	assert.Equal(t, 3, trades)
	assert.InDelta(t, 1150000, finalValue, 1e-6)
}

func TestRecordRunIDsAreUnique(t *testing.T) {
	j, _ := newTestJournal(t)

	a, err := j.RecordRun(testSummary(), 1000000, "")
	require.NoError(t, err)
	b, err := j.RecordRun(testSummary(), 1000000, "")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRecordTrades(t *testing.T) {
	j, _ := newTestJournal(t)
	runID, err := j.RecordRun(testSummary(), 1000000, "")
	require.NoError(t, err)

	trades := []types.TradeRecord{
		{
			EntryDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			ExitDate:    time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
			Ticker:      "2330",
			Size:        decimal.NewFromInt(100),
			EntryPrice:  decimal.RequireFromString("580.00"),
			ExitPrice:   decimal.RequireFromString("612.50"),
			GrossPnL:    decimal.RequireFromString("3250.00"),
			NetPnL:      decimal.RequireFromString("3080.12"),
			Commission:  decimal.RequireFromString("169.88"),
			HoldingDays: 11,
			ReturnPct:   decimal.RequireFromString("5.60"),
		},
		{
			EntryDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			ExitDate:  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Ticker:    "2454",
			Size:      decimal.NewFromInt(50),
			NetPnL:    decimal.RequireFromString("-420.00"),
		},
	}
	require.NoError(t, j.RecordTrades(runID, trades))

	var count int
	row := j.db.QueryRow(`SELECT COUNT(*) FROM trades WHERE run_id = ?`, runID)
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 2, count)

	var ticker string
	var net float64
	row = j.db.QueryRow(`SELECT ticker, pnl_net FROM trades WHERE run_id = ? ORDER BY entry_date LIMIT 1`, runID)
	require.NoError(t, row.Scan(&ticker, &net))
	assert.Equal(t, "2330", ticker)
	assert.InDelta(t, 3080.12, net, 1e-6)
}

func TestRecordEquity(t *testing.T) {
	j, _ := newTestJournal(t)
	runID, err := j.RecordRun(testSummary(), 1000000, "")
	require.NoError(t, err)

	points := []engine.EquityPoint{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(1000000)},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(1004500)},
	}
	require.NoError(t, j.RecordEquity(runID, points))

	var count int
	row := j.db.QueryRow(`SELECT COUNT(*) FROM equity WHERE run_id = ?`, runID)
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 2, count)
}
