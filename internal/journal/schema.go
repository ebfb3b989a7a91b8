package journal

// Schema creates the journal tables. Idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    started_at    TEXT NOT NULL,
    start_date    TEXT NOT NULL,
    end_date      TEXT NOT NULL,
    initial_cash  REAL NOT NULL,
    final_value   REAL NOT NULL,
    total_trades  INTEGER NOT NULL,
    sharpe        REAL NOT NULL,
    max_drawdown  REAL NOT NULL,
    config_yaml   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS trades (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id       TEXT NOT NULL REFERENCES runs(id),
    ticker       TEXT NOT NULL,
    entry_date   TEXT NOT NULL,
    exit_date    TEXT NOT NULL,
    size         REAL NOT NULL,
    entry_price  REAL NOT NULL,
    exit_price   REAL NOT NULL,
    pnl          REAL NOT NULL,
    pnl_net      REAL NOT NULL,
    commission   REAL NOT NULL,
    holding_days INTEGER NOT NULL,
    return_pct   REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
    run_id TEXT NOT NULL REFERENCES runs(id),
    day    TEXT NOT NULL,
    value  REAL NOT NULL,
    PRIMARY KEY (run_id, day)
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
`
