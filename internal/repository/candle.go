package repository

import (
	"context"
	"time"

	"breakout20/types"
)

// GetDailyCandles loads the cleaned daily candles for a ticker, ordered by
// date, start and end inclusive.
func (db *Database) GetDailyCandles(ctx context.Context, ticker string, start, end time.Time) ([]types.Candle, error) {
	asset, err := db.GetAssetByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(ctx,
		`SELECT day, open, high, low, close, volume
		 FROM daily_candles
		 WHERE asset_id = $1 AND day >= $2 AND day <= $3
		 ORDER BY day`,
		asset.ID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candles []types.Candle
	for rows.Next() {
		c := types.Candle{Ticker: ticker}
		if err := rows.Scan(&c.Date, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, ErrNoCandles
	}
	return candles, nil
}
