// Package repository is the Postgres-backed asset and candle store used to
// feed backtests with cleaned daily price history.
package repository

import (
	"context"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAssetNotFound = errors.New("asset not found in datasource")
	ErrNoCandles     = errors.New("no candles found in datasource")
)

// Database holds the connection pool.
type Database struct {
	conn *pgxpool.Pool
}

// NewDatabase opens a pool, registers decimal support and verifies
// connectivity.
func NewDatabase(ctx context.Context, dbURL string) (*Database, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Scan numeric columns straight into shopspring decimals.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return &Database{conn: conn}, nil
}

func (db *Database) Close() {
	db.conn.Close()
}
