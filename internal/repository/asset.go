package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type Asset struct {
	ID        int
	Ticker    string
	Name      string
	CreatedAt time.Time
}

// GetAssetByTicker looks a ticker up in the assets table.
func (db *Database) GetAssetByTicker(ctx context.Context, ticker string) (*Asset, error) {
	row := db.conn.QueryRow(ctx,
		`SELECT id, ticker, name, created_at FROM assets WHERE ticker = $1`, ticker)

	var a Asset
	if err := row.Scan(&a.ID, &a.Ticker, &a.Name, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticker %s: %w", ticker, ErrAssetNotFound)
		}
		return nil, err
	}
	return &a, nil
}
