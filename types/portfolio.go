package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioView is a read-only snapshot handed to strategies and allocators.
type PortfolioView struct {
	Cash      decimal.Decimal
	Positions map[string]PositionSnapshot
	Time      time.Time
}

type PositionSnapshot struct {
	Ticker        string
	Quantity      decimal.Decimal
	AvgEntryPrice decimal.Decimal
	LastPrice     decimal.Decimal
	EntryDate     time.Time
}

// OpenPositions counts positions with a non-zero quantity.
func (v PortfolioView) OpenPositions() int {
	n := 0
	for _, pos := range v.Positions {
		if !pos.Quantity.IsZero() {
			n++
		}
	}
	return n
}

// Value is cash plus every position marked at its last price.
func (v PortfolioView) Value() decimal.Decimal {
	value := v.Cash
	for _, pos := range v.Positions {
		value = value.Add(pos.Quantity.Mul(pos.LastPrice))
	}
	return value
}
