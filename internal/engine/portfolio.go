package engine

import (
	"errors"
	"fmt"
	"time"

	"breakout20/types"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownFillSide  = errors.New("unknown fill side")
	ErrInsufficientCash = errors.New("insufficient cash when applying fill")
	ErrOversell         = errors.New("sell fill exceeds held quantity")
)

type position struct {
	ticker          string
	quantity        decimal.Decimal
	avgCost         decimal.Decimal
	lastPrice       decimal.Decimal
	entryDate       time.Time
	entryCommission decimal.Decimal
}

// portfolio tracks cash and open positions from fills. It knows nothing about
// signals; the only way in is applyFill.
type portfolio struct {
	cash      decimal.Decimal
	positions map[string]*position
}

func newPortfolio(initialCash decimal.Decimal) *portfolio {
	return &portfolio{
		cash:      initialCash,
		positions: make(map[string]*position),
	}
}

func (p *portfolio) snapshot(t time.Time) types.PortfolioView {
	view := types.PortfolioView{
		Cash:      p.cash,
		Positions: make(map[string]types.PositionSnapshot, len(p.positions)),
		Time:      t,
	}
	for ticker, pos := range p.positions {
		view.Positions[ticker] = types.PositionSnapshot{
			Ticker:        pos.ticker,
			Quantity:      pos.quantity,
			AvgEntryPrice: pos.avgCost,
			LastPrice:     pos.lastPrice,
			EntryDate:     pos.entryDate,
		}
	}
	return view
}

// markToMarket refreshes the held position's last price from the bar's close.
func (p *portfolio) markToMarket(c types.Candle) {
	if pos, ok := p.positions[c.Ticker]; ok {
		pos.lastPrice = c.Close
	}
}

// value is cash plus positions at their last marked price.
func (p *portfolio) value() decimal.Decimal {
	v := p.cash
	for _, pos := range p.positions {
		v = v.Add(pos.quantity.Mul(pos.lastPrice))
	}
	return v
}

// applyFill updates cash and positions. When a sell closes a position
// completely, the finished round trip is returned for the ledger.
func (p *portfolio) applyFill(fill types.Fill) (*types.TradeRecord, error) {
	value := fill.Price.Mul(fill.Quantity)

	switch fill.Side {
	case types.SideTypeBuy:
		newCash := p.cash.Sub(value).Sub(fill.Commission)
		if newCash.IsNegative() {
			return nil, fmt.Errorf("%w: %s %s on %s",
				ErrInsufficientCash, fill.Ticker, fill.Quantity, fill.Time.Format("2006-01-02"))
		}
		p.cash = newCash

		pos, ok := p.positions[fill.Ticker]
		if !ok {
			p.positions[fill.Ticker] = &position{
				ticker:          fill.Ticker,
				quantity:        fill.Quantity,
				avgCost:         fill.Price,
				lastPrice:       fill.Price,
				entryDate:       fill.Time,
				entryCommission: fill.Commission,
			}
			return nil, nil
		}
		pos.avgCost = weightedAvg(pos.avgCost, pos.quantity, fill.Price, fill.Quantity)
		pos.quantity = pos.quantity.Add(fill.Quantity)
		pos.lastPrice = fill.Price
		pos.entryCommission = pos.entryCommission.Add(fill.Commission)
		return nil, nil

	case types.SideTypeSell:
		pos, ok := p.positions[fill.Ticker]
		if !ok || fill.Quantity.GreaterThan(pos.quantity) {
			return nil, fmt.Errorf("%w: %s %s on %s",
				ErrOversell, fill.Ticker, fill.Quantity, fill.Time.Format("2006-01-02"))
		}
		p.cash = p.cash.Add(value).Sub(fill.Commission)
		pos.quantity = pos.quantity.Sub(fill.Quantity)
		pos.lastPrice = fill.Price

		if !pos.quantity.IsZero() {
			return nil, nil
		}
		delete(p.positions, fill.Ticker)
		return closeTrade(pos, fill), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFillSide, fill.Side)
	}
}

func closeTrade(pos *position, fill types.Fill) *types.TradeRecord {
	size := fill.Quantity
	gross := fill.Price.Sub(pos.avgCost).Mul(size)
	commission := pos.entryCommission.Add(fill.Commission)

	returnPct := decimal.Zero
	if notional := pos.avgCost.Mul(size); !notional.IsZero() {
		returnPct = gross.Div(notional).Mul(decimal.NewFromInt(100))
	}

	holdingDays := int(fill.Time.Sub(pos.entryDate).Hours() / 24)

	return &types.TradeRecord{
		EntryDate:   pos.entryDate,
		ExitDate:    fill.Time,
		Ticker:      pos.ticker,
		Size:        size,
		EntryPrice:  pos.avgCost,
		ExitPrice:   fill.Price,
		GrossPnL:    gross,
		NetPnL:      gross.Sub(commission),
		Commission:  commission,
		HoldingDays: holdingDays,
		ReturnPct:   returnPct,
	}
}

func weightedAvg(existingPrice, existingQty, newPrice, newQty decimal.Decimal) decimal.Decimal {
	if existingQty.IsZero() {
		return newPrice
	}
	return existingPrice.Mul(existingQty).
		Add(newPrice.Mul(newQty)).
		Div(existingQty.Add(newQty))
}
