// Package journal persists backtest runs to a local SQLite file so past
// runs can be compared without re-running them.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"breakout20/internal/engine"
	"breakout20/types"
)

const dateLayout = "2006-01-02"

type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the journal file and applies the schema.
func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

// RecordRun writes the run header row and returns its id.
func (j *SQLiteJournal) RecordRun(s engine.Summary, initialCash float64, configYAML string) (string, error) {
	runID := ulid.Make().String()
	_, err := j.db.Exec(`
		INSERT INTO runs
		(id, started_at, start_date, end_date, initial_cash, final_value,
		 total_trades, sharpe, max_drawdown, config_yaml)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		time.Now().UTC().Format(time.RFC3339),
		s.StartDate.Format(dateLayout),
		s.EndDate.Format(dateLayout),
		initialCash,
		s.EndValue,
		s.TotalTrades,
		s.SharpeRatio,
		s.MaxDrawdownPct,
		configYAML,
	)
	if err != nil {
		return "", err
	}
	return runID, nil
}

// RecordTrades writes every closed trade of a run in one transaction.
func (j *SQLiteJournal) RecordTrades(runID string, trades []types.TradeRecord) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO trades
		(run_id, ticker, entry_date, exit_date, size, entry_price, exit_price,
		 pnl, pnl_net, commission, holding_days, return_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range trades {
		_, err := stmt.Exec(
			runID,
			t.Ticker,
			t.EntryDate.Format(dateLayout),
			t.ExitDate.Format(dateLayout),
			t.Size.InexactFloat64(),
			t.EntryPrice.InexactFloat64(),
			t.ExitPrice.InexactFloat64(),
			t.GrossPnL.InexactFloat64(),
			t.NetPnL.InexactFloat64(),
			t.Commission.InexactFloat64(),
			t.HoldingDays,
			t.ReturnPct.InexactFloat64(),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecordEquity writes the daily equity curve of a run.
func (j *SQLiteJournal) RecordEquity(runID string, points []engine.EquityPoint) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO equity (run_id, day, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(runID, p.Date.Format(dateLayout), p.Value.InexactFloat64()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
