package breakout

import (
	"breakout20/types"

	"github.com/shopspring/decimal"
)

// EntryFilter gates breakout entries. Filters only suppress new entries;
// tracking transitions and exits never pass through them.
type EntryFilter interface {
	Allow(c types.Candle, ind Indicators, view types.PortfolioView) (bool, string)
}

// MaxPositionsFilter caps the number of simultaneously open positions.
type MaxPositionsFilter struct {
	Max int
}

func (f MaxPositionsFilter) Allow(_ types.Candle, _ Indicators, view types.PortfolioView) (bool, string) {
	if view.OpenPositions() >= f.Max {
		return false, "max positions reached"
	}
	return true, ""
}

// MinVolumeFilter skips entries on thin bars.
type MinVolumeFilter struct {
	Min decimal.Decimal
}

func (f MinVolumeFilter) Allow(c types.Candle, _ Indicators, _ types.PortfolioView) (bool, string) {
	if c.Volume.LessThan(f.Min) {
		return false, "volume below minimum"
	}
	return true, ""
}

// VolatilityFilter skips entries while ATR exceeds the configured fraction of
// the closing price. With the default 0.05 an instrument whose daily range
// averages more than 5% of its price is left alone.
type VolatilityFilter struct {
	MaxATRFraction decimal.Decimal
}

func (f VolatilityFilter) Allow(c types.Candle, ind Indicators, _ types.PortfolioView) (bool, string) {
	if !ind.ATRReady || c.Close.IsZero() {
		return true, ""
	}
	if ind.ATR.Div(c.Close).GreaterThan(f.MaxATRFraction) {
		return false, "volatility above threshold"
	}
	return true, ""
}
