package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one instrument's OHLCV snapshot for one trading day.
// Candles for a ticker are ordered by date and dates never repeat.
type Candle struct {
	Ticker string          `json:"ticker"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
	Date   time.Time       `json:"date"`
}
