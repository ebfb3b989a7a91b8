// Package breakout implements the 20-day breakout strategy: an instrument
// becomes eligible after closing below its moving average, enters long when it
// closes above the rolling high of the preceding bars, and exits when any
// later bar trades below the low of the entry day.
package breakout

import (
	"errors"
	"fmt"

	"breakout20/internal/indicators"
	"breakout20/internal/logger"
	"breakout20/types"

	"github.com/shopspring/decimal"
)

var (
	ErrUnexpectedFill      = errors.New("fill without matching pending order")
	ErrUnexpectedRejection = errors.New("rejection without matching pending order")
	ErrUnknownFillSide     = errors.New("unknown fill side")
)

type State string

const (
	StateIdle     State = "FLAT_IDLE"
	StateTracking State = "FLAT_TRACKING"
	StateLong     State = "LONG"
)

// InstrumentState is the per-instrument machine state. It is a plain value;
// the step function returns the successor state instead of mutating shared
// structures.
type InstrumentState struct {
	Ticker       string
	Tracking     bool
	PositionOpen bool
	EntryLow     decimal.Decimal
	HasEntryLow  bool
	PendingOrder string
}

func (s InstrumentState) State() State {
	switch {
	case s.PositionOpen:
		return StateLong
	case s.Tracking:
		return StateTracking
	default:
		return StateIdle
	}
}

// Indicators is the read-only snapshot evaluated against one bar. RollingHigh
// covers the bars preceding the current one: a breakout must clear prior
// history, not its own high.
type Indicators struct {
	SMA         decimal.Decimal
	RollingHigh decimal.Decimal
	ATR         decimal.Decimal
	ATRReady    bool
}

type Config struct {
	SMAWindow  int
	HighWindow int
	ATRPeriod  int // 0 disables the ATR stream
}

type Strategy struct {
	cfg     Config
	filters []EntryFilter

	states map[string]*InstrumentState
	sma    map[string]*indicators.SMA
	high   map[string]*indicators.RollingHigh
	atr    map[string]*indicators.ATR
}

func New(cfg Config, filters ...EntryFilter) *Strategy {
	return &Strategy{
		cfg:     cfg,
		filters: filters,
		states:  make(map[string]*InstrumentState),
		sma:     make(map[string]*indicators.SMA),
		high:    make(map[string]*indicators.RollingHigh),
		atr:     make(map[string]*indicators.ATR),
	}
}

func (s *Strategy) instrument(ticker string) *InstrumentState {
	st, ok := s.states[ticker]
	if !ok {
		st = &InstrumentState{Ticker: ticker}
		s.states[ticker] = st
		s.sma[ticker] = indicators.NewSMA(s.cfg.SMAWindow)
		s.high[ticker] = indicators.NewRollingHigh(s.cfg.HighWindow)
		if s.cfg.ATRPeriod > 0 {
			s.atr[ticker] = indicators.NewATR(s.cfg.ATRPeriod)
		}
	}
	return st
}

// OnCandle advances the instrument's indicators and evaluates the state
// machine for one bar. At most one signal is returned per instrument per bar.
func (s *Strategy) OnCandle(c types.Candle, view types.PortfolioView) []types.Signal {
	st := s.instrument(c.Ticker)

	high := s.high[c.Ticker]
	sma := s.sma[c.Ticker]

	// The rolling high is sampled before the current bar enters the window.
	priorHighReady := high.Ready()
	priorHigh := high.Value()

	sma.Update(c)
	high.Update(c)
	if atr := s.atr[c.Ticker]; atr != nil {
		atr.Update(c)
	}

	if !sma.Ready() || !priorHighReady {
		return nil
	}

	ind := Indicators{
		SMA:         sma.Value(),
		RollingHigh: priorHigh,
	}
	if atr := s.atr[c.Ticker]; atr != nil && atr.Ready() {
		ind.ATR = atr.Value()
		ind.ATRReady = true
	}

	next, sig := step(*st, c, ind, s.filters, view)
	*st = next
	if sig == nil {
		return nil
	}
	logger.L().Debug("signal",
		"ticker", c.Ticker, "date", c.Date.Format("2006-01-02"),
		"side", string(sig.Side), "reason", sig.Reason)
	return []types.Signal{*sig}
}

// step is the transition function: (state, bar, indicators) -> (state, intent).
// It never mutates its input and emits nothing while an order is pending.
func step(st InstrumentState, c types.Candle, ind Indicators, filters []EntryFilter, view types.PortfolioView) (InstrumentState, *types.Signal) {
	if st.PendingOrder != "" {
		return st, nil
	}

	if !st.PositionOpen {
		if !st.Tracking && c.Close.LessThan(ind.SMA) {
			st.Tracking = true
			logger.L().Debug("tracking on",
				"ticker", c.Ticker, "date", c.Date.Format("2006-01-02"),
				"close", c.Close, "sma", ind.SMA)
		}
		if st.Tracking && c.Close.GreaterThan(ind.RollingHigh) {
			for _, f := range filters {
				if ok, why := f.Allow(c, ind, view); !ok {
					logger.L().Debug("entry blocked",
						"ticker", c.Ticker, "date", c.Date.Format("2006-01-02"), "filter", why)
					return st, nil
				}
			}
			sig := types.NewSignal(c.Ticker, types.SideTypeBuy, c.Close,
				"close above rolling high of preceding bars", c.Date)
			return st, &sig
		}
		return st, nil
	}

	// Long: compare the intraday low against the low of the entry day.
	if st.HasEntryLow && c.Low.LessThan(st.EntryLow) {
		sig := types.NewSignal(c.Ticker, types.SideTypeSell, c.Close,
			"intraday low under entry-day low", c.Date)
		return st, &sig
	}
	return st, nil
}

// OnOrderSubmitted marks the instrument pending; no further intents are
// emitted for it until the order resolves.
func (s *Strategy) OnOrderSubmitted(ticker, orderID string) {
	s.instrument(ticker).PendingOrder = orderID
}

// OnOrderFilled consumes a fill from the execution engine. The bar argument is
// the bar during which the fill was delivered; its low becomes the entry
// reference for buys. A fill that matches no pending order is a protocol
// violation and is returned as a fatal error.
func (s *Strategy) OnOrderFilled(fill types.Fill, fillBar types.Candle) error {
	st, ok := s.states[fill.Ticker]
	if !ok || st.PendingOrder == "" || st.PendingOrder != fill.OrderID {
		return fmt.Errorf("%w: ticker %s order %s on %s",
			ErrUnexpectedFill, fill.Ticker, fill.OrderID, fill.Time.Format("2006-01-02"))
	}
	st.PendingOrder = ""

	switch fill.Side {
	case types.SideTypeBuy:
		st.PositionOpen = true
		st.EntryLow = fillBar.Low
		st.HasEntryLow = true
	case types.SideTypeSell:
		// Closed out: the instrument re-qualifies from scratch.
		st.PositionOpen = false
		st.Tracking = false
		st.EntryLow = decimal.Zero
		st.HasEntryLow = false
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFillSide, fill.Side)
	}
	return nil
}

// OnOrderRejected clears the pending flag without touching tracking or
// position state, so the instrument is re-evaluated on its next bar.
func (s *Strategy) OnOrderRejected(rej types.Rejection) error {
	st, ok := s.states[rej.Ticker]
	if !ok || st.PendingOrder == "" || st.PendingOrder != rej.OrderID {
		return fmt.Errorf("%w: ticker %s order %s",
			ErrUnexpectedRejection, rej.Ticker, rej.OrderID)
	}
	st.PendingOrder = ""
	logger.L().Debug("order rejected", "ticker", rej.Ticker, "reason", rej.Reason)
	return nil
}

// StateFor reports the machine state for a ticker; unknown tickers are idle.
func (s *Strategy) StateFor(ticker string) State {
	if st, ok := s.states[ticker]; ok {
		return st.State()
	}
	return StateIdle
}

// TrackingCount reports how many instruments were still tracking at the end
// of a run.
func (s *Strategy) TrackingCount() int {
	n := 0
	for _, st := range s.states {
		if st.Tracking && !st.PositionOpen {
			n++
		}
	}
	return n
}
