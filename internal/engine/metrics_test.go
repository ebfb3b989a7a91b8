package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakout20/types"
)

func tradeRecordNet(net float64, holdingDays int) types.TradeRecord {
	return types.TradeRecord{
		GrossPnL:    decimal.NewFromFloat(net),
		NetPnL:      decimal.NewFromFloat(net),
		HoldingDays: holdingDays,
	}
}

func ledgerOf(nets ...float64) *TradeLedger {
	l := NewTradeLedger()
	for _, n := range nets {
		l.Append(tradeRecordNet(n, 5))
	}
	return l
}

func TestTotalReturnAndCAGR(t *testing.T) {
	tr := NewEquityTracker()
	require.NoError(t, tr.Record(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(100)))
	require.NoError(t, tr.Record(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(150)))

	s := CalculateSummary(tr, NewTradeLedger(), DefaultRiskFreeRate)
	assert.InDelta(t, 50.0, s.TotalReturnPct, 1e-9)
	// 50% over 365 calendar days annualizes just above 50%.
	assert.InDelta(t, 50.04, s.CAGRPct, 0.05)
	assert.Equal(t, 2, s.TradingDays)
}

func TestProfitFactorRatio(t *testing.T) {
	s := CalculateSummary(NewEquityTracker(), ledgerOf(20, 10, -10), DefaultRiskFreeRate)

	assert.False(t, s.ProfitFactor.Infinite)
	assert.InDelta(t, 3.0, s.ProfitFactor.Ratio, 1e-9)
	assert.Equal(t, "3.00", s.ProfitFactor.String())
	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.WinningTrades)
	assert.Equal(t, 1, s.LosingTrades)
	assert.InDelta(t, 66.666, s.WinRatePct, 0.01)
}

func TestProfitFactorInfiniteSentinel(t *testing.T) {
	s := CalculateSummary(NewEquityTracker(), ledgerOf(20, 10), DefaultRiskFreeRate)

	assert.True(t, s.ProfitFactor.Infinite)
	assert.Equal(t, "Inf", s.ProfitFactor.String())
}

func TestProfitFactorNoTrades(t *testing.T) {
	s := CalculateSummary(NewEquityTracker(), NewTradeLedger(), DefaultRiskFreeRate)

	assert.False(t, s.ProfitFactor.Infinite)
	assert.Equal(t, "0.00", s.ProfitFactor.String())
	assert.Equal(t, 0, s.TotalTrades)
	assert.Zero(t, s.WinRatePct)
	assert.Zero(t, s.AvgHoldingDays)
}

func TestTradeExtremes(t *testing.T) {
	s := CalculateSummary(NewEquityTracker(), ledgerOf(20, -5, 12, -30), DefaultRiskFreeRate)

	assert.InDelta(t, 20.0, s.BestTrade, 1e-9)
	assert.InDelta(t, -30.0, s.WorstTrade, 1e-9)
	assert.InDelta(t, 16.0, s.AvgWinningTrade, 1e-9)
	assert.InDelta(t, -17.5, s.AvgLosingTrade, 1e-9)
	assert.InDelta(t, 5.0, s.AvgHoldingDays, 1e-9)
}

func TestSharpeDegenerateInputs(t *testing.T) {
	// A single equity point has no returns.
	tr := NewEquityTracker()
	require.NoError(t, tr.Record(day(1), decimal.NewFromInt(100)))
	s := CalculateSummary(tr, NewTradeLedger(), DefaultRiskFreeRate)
	assert.Zero(t, s.SharpeRatio)
	assert.Zero(t, s.VolatilityPct)

	// A flat curve has zero volatility; the ratio stays 0, not NaN.
	tr = NewEquityTracker()
	record(t, tr, 100, 100, 100)
	s = CalculateSummary(tr, NewTradeLedger(), DefaultRiskFreeRate)
	assert.Zero(t, s.SharpeRatio)
}

func TestSharpeKnownValue(t *testing.T) {
	// Returns +10% then -9.0909..%: mean and annual return land near zero,
	// so the ratio is a small negative number dominated by the risk-free rate.
	tr := NewEquityTracker()
	record(t, tr, 100, 110, 99)
	s := CalculateSummary(tr, NewTradeLedger(), 0.01)
	assert.Less(t, s.SharpeRatio, 0.0)
	assert.Greater(t, s.VolatilityPct, 0.0)
}

func TestCalculateSummaryIdempotent(t *testing.T) {
	tr := NewEquityTracker()
	record(t, tr, 100, 105, 103, 120)
	l := ledgerOf(20, -5)

	first := CalculateSummary(tr, l, DefaultRiskFreeRate)
	second := CalculateSummary(tr, l, DefaultRiskFreeRate)
	assert.Equal(t, first, second)
}

func TestSummaryFieldOrder(t *testing.T) {
	want := []string{
		"start_date", "end_date", "start_value", "end_value",
		"total_return_pct", "cagr_pct", "sharpe_ratio", "volatility_pct",
		"max_drawdown_pct", "max_drawdown_days", "total_trades",
		"winning_trades", "losing_trades", "win_rate_pct", "profit_factor",
		"avg_winning_trade", "avg_losing_trade", "best_trade", "worst_trade",
		"avg_holding_days", "total_commission", "trading_days",
	}

	fields := Summary{}.Fields()
	require.Len(t, fields, len(want))
	for i, f := range fields {
		assert.Equal(t, want[i], f.Key)
	}
}

func TestFieldsRounding(t *testing.T) {
	s := Summary{
		TotalReturnPct: 50.056789,
		SharpeRatio:    1.23456,
		AvgHoldingDays: 7.44,
	}
	byKey := map[string]string{}
	for _, f := range s.Fields() {
		byKey[f.Key] = f.Value
	}
	assert.Equal(t, "50.06", byKey["total_return_pct"])
	assert.Equal(t, "1.235", byKey["sharpe_ratio"])
	assert.Equal(t, "7.4", byKey["avg_holding_days"])
}
