package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNonMonotonicEquity = errors.New("equity point out of order")

// EquityPoint is the portfolio's mark-to-market value for one trading day.
type EquityPoint struct {
	Date  time.Time
	Value decimal.Decimal
}

// EquityTracker maintains the equity curve and running drawdown state. The
// peak initializes to the first recorded value, not to starting cash, so a
// cash/market-value mismatch on day one does not register as a drawdown.
type EquityTracker struct {
	points []EquityPoint

	peak                decimal.Decimal
	maxDrawdown         decimal.Decimal // fraction of peak, in [0,1]
	inDrawdown          bool
	currentDrawdownDays int
	maxDrawdownDays     int
}

func NewEquityTracker() *EquityTracker {
	return &EquityTracker{}
}

// Record appends one daily portfolio value. Dates must be strictly
// increasing; anything else is a usage error, not a silent skip.
func (t *EquityTracker) Record(date time.Time, value decimal.Decimal) error {
	if n := len(t.points); n > 0 && !date.After(t.points[n-1].Date) {
		return fmt.Errorf("%w: %s not after %s",
			ErrNonMonotonicEquity,
			date.Format("2006-01-02"), t.points[n-1].Date.Format("2006-01-02"))
	}

	// The first point only seeds the peak; drawdown accounting starts with
	// the second.
	if len(t.points) == 0 {
		t.peak = value
		t.points = append(t.points, EquityPoint{Date: date, Value: value})
		return nil
	}
	t.points = append(t.points, EquityPoint{Date: date, Value: value})

	if value.GreaterThan(t.peak) {
		t.peak = value
		if t.inDrawdown {
			t.inDrawdown = false
			t.currentDrawdownDays = 0
		}
		return nil
	}

	t.inDrawdown = true
	t.currentDrawdownDays++
	if t.currentDrawdownDays > t.maxDrawdownDays {
		t.maxDrawdownDays = t.currentDrawdownDays
	}
	if t.peak.IsPositive() {
		drawdown := t.peak.Sub(value).Div(t.peak)
		if drawdown.GreaterThan(t.maxDrawdown) {
			t.maxDrawdown = drawdown
		}
	}
	return nil
}

// Points returns a copy of the equity curve in recording order.
func (t *EquityTracker) Points() []EquityPoint {
	out := make([]EquityPoint, len(t.points))
	copy(out, t.points)
	return out
}

func (t *EquityTracker) Peak() decimal.Decimal { return t.peak }

// MaxDrawdown is the largest peak-to-trough decline seen so far, as a
// fraction of the peak.
func (t *EquityTracker) MaxDrawdown() decimal.Decimal { return t.maxDrawdown }

// MaxDrawdownDays is the longest run of consecutive non-new-high days.
func (t *EquityTracker) MaxDrawdownDays() int { return t.maxDrawdownDays }

func (t *EquityTracker) InDrawdown() bool { return t.inDrawdown }
