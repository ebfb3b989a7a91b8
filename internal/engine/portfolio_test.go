package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakout20/types"
)

func buyFill(ticker string, price, qty, commission float64, day int) types.Fill {
	return types.Fill{
		OrderID:    "o1",
		Ticker:     ticker,
		Side:       types.SideTypeBuy,
		Price:      decimal.NewFromFloat(price),
		Quantity:   decimal.NewFromFloat(qty),
		Commission: decimal.NewFromFloat(commission),
		Time:       time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func sellFill(ticker string, price, qty, commission float64, day int) types.Fill {
	f := buyFill(ticker, price, qty, commission, day)
	f.Side = types.SideTypeSell
	return f
}

func TestPortfolioOpenLong(t *testing.T) {
	p := newPortfolio(decimal.NewFromInt(10000))

	closed, err := p.applyFill(buyFill("2330", 100, 10, 1, 1))
	require.NoError(t, err)
	assert.Nil(t, closed)

	assert.True(t, p.cash.Equal(decimal.NewFromInt(8999)), "got %s", p.cash)
	pos := p.positions["2330"]
	require.NotNil(t, pos)
	assert.True(t, pos.quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, pos.avgCost.Equal(decimal.NewFromInt(100)))
}

func TestPortfolioScaleInUpdatesAvgCost(t *testing.T) {
	p := newPortfolio(decimal.NewFromInt(10000))
	_, err := p.applyFill(buyFill("2330", 100, 10, 0, 1))
	require.NoError(t, err)
	_, err = p.applyFill(buyFill("2330", 110, 5, 0, 2))
	require.NoError(t, err)

	pos := p.positions["2330"]
	assert.True(t, pos.quantity.Equal(decimal.NewFromInt(15)))
	// (100*10 + 110*5) / 15
	want := decimal.RequireFromString("103.3333333333333333")
	assert.True(t, pos.avgCost.Sub(want).Abs().LessThan(decimal.RequireFromString("0.0001")),
		"got %s", pos.avgCost)
}

func TestPortfolioRejectsOverdraft(t *testing.T) {
	p := newPortfolio(decimal.NewFromInt(500))

	_, err := p.applyFill(buyFill("2330", 100, 10, 0, 1))
	assert.ErrorIs(t, err, ErrInsufficientCash)
	assert.True(t, p.cash.Equal(decimal.NewFromInt(500)), "cash untouched on error")
}

func TestPortfolioRejectsOversell(t *testing.T) {
	p := newPortfolio(decimal.NewFromInt(10000))
	_, err := p.applyFill(buyFill("2330", 100, 10, 0, 1))
	require.NoError(t, err)

	_, err = p.applyFill(sellFill("2330", 100, 11, 0, 2))
	assert.ErrorIs(t, err, ErrOversell)

	_, err = p.applyFill(sellFill("2454", 100, 1, 0, 2))
	assert.ErrorIs(t, err, ErrOversell)
}

func TestPortfolioFullCloseReturnsTradeRecord(t *testing.T) {
	p := newPortfolio(decimal.NewFromInt(10000))
	_, err := p.applyFill(buyFill("2330", 100, 10, 2, 1))
	require.NoError(t, err)

	closed, err := p.applyFill(sellFill("2330", 120, 10, 3, 11))
	require.NoError(t, err)
	require.NotNil(t, closed)

	assert.Equal(t, "2330", closed.Ticker)
	assert.True(t, closed.GrossPnL.Equal(decimal.NewFromInt(200)), "got %s", closed.GrossPnL)
	// Entry and exit commissions both count against the net.
	assert.True(t, closed.Commission.Equal(decimal.NewFromInt(5)))
	assert.True(t, closed.NetPnL.Equal(decimal.NewFromInt(195)))
	assert.True(t, closed.ReturnPct.Equal(decimal.NewFromInt(20)), "got %s", closed.ReturnPct)
	assert.Equal(t, 10, closed.HoldingDays)

	assert.Nil(t, p.positions["2330"])
	// 10000 - 1000 - 2 + 1200 - 3
	assert.True(t, p.cash.Equal(decimal.NewFromInt(10195)), "got %s", p.cash)
}

func TestPortfolioPartialSellKeepsPosition(t *testing.T) {
	p := newPortfolio(decimal.NewFromInt(10000))
	_, err := p.applyFill(buyFill("2330", 100, 10, 0, 1))
	require.NoError(t, err)

	closed, err := p.applyFill(sellFill("2330", 110, 4, 0, 2))
	require.NoError(t, err)
	assert.Nil(t, closed, "partial close is not a finished round trip")
	assert.True(t, p.positions["2330"].quantity.Equal(decimal.NewFromInt(6)))
}

func TestPortfolioMarkToMarketAndValue(t *testing.T) {
	p := newPortfolio(decimal.NewFromInt(10000))
	_, err := p.applyFill(buyFill("2330", 100, 10, 0, 1))
	require.NoError(t, err)

	p.markToMarket(types.Candle{
		Ticker: "2330",
		Close:  decimal.NewFromInt(105),
		Date:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})

	// 9000 cash + 10 * 105
	assert.True(t, p.value().Equal(decimal.NewFromInt(10050)), "got %s", p.value())
}

func TestPortfolioSnapshot(t *testing.T) {
	p := newPortfolio(decimal.NewFromInt(10000))
	_, err := p.applyFill(buyFill("2330", 100, 10, 0, 1))
	require.NoError(t, err)

	view := p.snapshot(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.True(t, view.Cash.Equal(decimal.NewFromInt(9000)))
	require.Contains(t, view.Positions, "2330")
	assert.True(t, view.Positions["2330"].Quantity.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, view.OpenPositions())
}
