package engine

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"breakout20/internal/logger"
	"breakout20/types"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
)

var ErrOutOfOrderBar = errors.New("bars out of order")

// Feed is one instrument's daily candles, ordered by date.
type Feed struct {
	Ticker  string
	Candles []types.Candle
}

// RunOptions tunes a single run.
type RunOptions struct {
	ShowProgress bool
	RiskFreeRate float64 // annual; 0 means DefaultRiskFreeRate
}

// Engine drives the event loop: bars strictly in date order, every
// instrument of a date processed before the next date, fills delivered
// before the instrument's next bar. Everything runs on the calling
// goroutine.
type Engine struct {
	feeds     []*Feed
	strategy  Strategy
	allocator Allocator
	broker    Broker
	opts      RunOptions

	portfolio *portfolio
	equity    *EquityTracker
	ledger    *TradeLedger

	ran bool
}

func NewEngine(feeds []*Feed, strat Strategy, alloc Allocator, broker Broker, initialCash decimal.Decimal, opts RunOptions) *Engine {
	if opts.RiskFreeRate == 0 {
		opts.RiskFreeRate = DefaultRiskFreeRate
	}
	return &Engine{
		feeds:     feeds,
		strategy:  strat,
		allocator: alloc,
		broker:    broker,
		opts:      opts,
		portfolio: newPortfolio(initialCash),
		equity:    NewEquityTracker(),
		ledger:    NewTradeLedger(),
	}
}

// Run replays all feeds through the strategy. Usage errors (out-of-order
// bars, protocol violations from the broker) abort the run.
func (e *Engine) Run() error {
	if err := e.validateFeeds(); err != nil {
		return err
	}

	dates := e.tradingDates()
	bar := e.progressBar(len(dates))
	cursor := make([]int, len(e.feeds))

	logger.L().Info("backtest starting",
		"instruments", len(e.feeds), "trading_days", len(dates))

	for _, date := range dates {
		for i, feed := range e.feeds {
			if cursor[i] >= len(feed.Candles) {
				continue
			}
			candle := feed.Candles[cursor[i]]
			if !candle.Date.Equal(date) {
				continue
			}
			cursor[i]++

			if err := e.processBar(candle); err != nil {
				return err
			}
		}

		if err := e.equity.Record(date, e.portfolio.value()); err != nil {
			return err
		}
		bar.Add(1)
	}

	// No next bar exists for whatever is still queued.
	for _, rej := range e.broker.CancelAll() {
		if err := e.strategy.OnOrderRejected(rej); err != nil {
			return err
		}
	}

	e.ran = true
	logger.L().Info("backtest finished",
		"final_value", e.portfolio.value().StringFixed(2),
		"closed_trades", e.ledger.Len())
	return nil
}

// processBar runs the per-instrument sequence for one bar: resolve pending
// orders first, then mark to market, then let the strategy see the bar.
func (e *Engine) processBar(candle types.Candle) error {
	fills, rejections := e.broker.Execute(candle, e.portfolio.cash)
	for _, fill := range fills {
		closed, err := e.portfolio.applyFill(fill)
		if err != nil {
			return err
		}
		if closed != nil {
			e.ledger.Append(*closed)
		}
		if err := e.strategy.OnOrderFilled(fill, candle); err != nil {
			return err
		}
	}
	for _, rej := range rejections {
		if err := e.strategy.OnOrderRejected(rej); err != nil {
			return err
		}
	}

	e.portfolio.markToMarket(candle)

	view := e.portfolio.snapshot(candle.Date)
	signals := e.strategy.OnCandle(candle, view)
	if len(signals) == 0 {
		return nil
	}
	for _, order := range e.allocator.Allocate(signals, view) {
		id := e.broker.Submit(order)
		e.strategy.OnOrderSubmitted(order.Ticker, id)
	}
	return nil
}

// Summary derives the run statistics. Valid only after Run.
func (e *Engine) Summary() Summary {
	return CalculateSummary(e.equity, e.ledger, e.opts.RiskFreeRate)
}

func (e *Engine) Equity() *EquityTracker { return e.equity }

func (e *Engine) Ledger() *TradeLedger { return e.ledger }

// PortfolioValue is the current mark-to-market value.
func (e *Engine) PortfolioValue() decimal.Decimal { return e.portfolio.value() }

func (e *Engine) validateFeeds() error {
	for _, feed := range e.feeds {
		for i := 1; i < len(feed.Candles); i++ {
			prev, cur := feed.Candles[i-1], feed.Candles[i]
			if !cur.Date.After(prev.Date) {
				return fmt.Errorf("%w: %s at %s", ErrOutOfOrderBar,
					feed.Ticker, cur.Date.Format("2006-01-02"))
			}
		}
	}
	return nil
}

// tradingDates is the sorted union of all feed dates.
func (e *Engine) tradingDates() []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, feed := range e.feeds {
		for _, c := range feed.Candles {
			if !seen[c.Date] {
				seen[c.Date] = true
				dates = append(dates, c.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func (e *Engine) progressBar(days int) *progressbar.ProgressBar {
	if !e.opts.ShowProgress {
		return progressbar.NewOptions(days, progressbar.OptionSetWriter(io.Discard))
	}
	return progressbar.NewOptions(days,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
