package indicators

import (
	"fmt"

	"breakout20/types"

	"github.com/shopspring/decimal"
)

// ATR is a streaming Average True Range using Wilder's smoothing.
type ATR struct {
	period      int
	atr         decimal.Decimal
	count       int
	warmupSum   decimal.Decimal
	prevCandle  types.Candle
	hasPrevious bool
}

func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

func (a *ATR) Warmup() int {
	// TR needs the previous candle, so one extra bar.
	return a.period + 1
}

func (a *ATR) Update(c types.Candle) {
	if !a.hasPrevious {
		a.prevCandle = c
		a.hasPrevious = true
		return
	}

	tr := trueRange(c, a.prevCandle)

	if a.count < a.period {
		a.warmupSum = a.warmupSum.Add(tr)
		a.count++
		if a.count == a.period {
			a.atr = a.warmupSum.Div(decimal.NewFromInt(int64(a.period)))
		}
	} else {
		p := decimal.NewFromInt(int64(a.period))
		a.atr = a.atr.Mul(p.Sub(decimal.NewFromInt(1))).Add(tr).Div(p)
	}

	a.prevCandle = c
}

func (a *ATR) Ready() bool {
	return a.count >= a.period
}

func (a *ATR) Value() decimal.Decimal {
	if !a.Ready() {
		return decimal.Zero
	}
	return a.atr
}

func trueRange(current, previous types.Candle) decimal.Decimal {
	highLow := current.High.Sub(current.Low)
	highClose := current.High.Sub(previous.Close).Abs()
	lowClose := current.Low.Sub(previous.Close).Abs()
	return decimal.Max(highLow, highClose, lowClose)
}
