package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one fully closed round trip. Created once when the closing
// fill arrives and immutable afterwards.
type TradeRecord struct {
	EntryDate   time.Time
	ExitDate    time.Time
	Ticker      string
	Size        decimal.Decimal
	EntryPrice  decimal.Decimal
	ExitPrice   decimal.Decimal
	GrossPnL    decimal.Decimal
	NetPnL      decimal.Decimal
	Commission  decimal.Decimal
	HoldingDays int
	ReturnPct   decimal.Decimal
}

// HoldingDuration is the calendar span between entry and exit.
func (t TradeRecord) HoldingDuration() time.Duration {
	return t.ExitDate.Sub(t.EntryDate)
}
