// Package indicators provides streaming per-instrument indicators. Each
// indicator consumes candles one at a time and reports a value only once its
// warm-up window has elapsed; before that the value is undefined and Ready
// returns false. Callers treat "not ready" as "skip this bar", never as an
// error.
package indicators

import (
	"fmt"

	"breakout20/types"

	"github.com/shopspring/decimal"
)

// SMA is a streaming simple moving average over closing prices.
type SMA struct {
	period int
	window []decimal.Decimal
	sum    decimal.Decimal
}

func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
		window: make([]decimal.Decimal, 0, period),
	}
}

func (m *SMA) Name() string {
	return fmt.Sprintf("SMA(%d)", m.period)
}

func (m *SMA) Warmup() int {
	return m.period
}

func (m *SMA) Update(c types.Candle) {
	m.window = append(m.window, c.Close)
	m.sum = m.sum.Add(c.Close)
	if len(m.window) > m.period {
		m.sum = m.sum.Sub(m.window[0])
		m.window = m.window[1:]
	}
}

func (m *SMA) Ready() bool {
	return len(m.window) >= m.period
}

func (m *SMA) Value() decimal.Decimal {
	if !m.Ready() {
		return decimal.Zero
	}
	return m.sum.Div(decimal.NewFromInt(int64(len(m.window))))
}

// RollingHigh is a streaming maximum over the last period highs.
type RollingHigh struct {
	period int
	window []decimal.Decimal
}

func NewRollingHigh(period int) *RollingHigh {
	return &RollingHigh{
		period: period,
		window: make([]decimal.Decimal, 0, period),
	}
}

func (h *RollingHigh) Name() string {
	return fmt.Sprintf("HIGH(%d)", h.period)
}

func (h *RollingHigh) Warmup() int {
	return h.period
}

func (h *RollingHigh) Update(c types.Candle) {
	h.window = append(h.window, c.High)
	if len(h.window) > h.period {
		h.window = h.window[1:]
	}
}

func (h *RollingHigh) Ready() bool {
	return len(h.window) >= h.period
}

func (h *RollingHigh) Value() decimal.Decimal {
	if !h.Ready() {
		return decimal.Zero
	}
	highest := h.window[0]
	for _, v := range h.window[1:] {
		if v.GreaterThan(highest) {
			highest = v
		}
	}
	return highest
}
