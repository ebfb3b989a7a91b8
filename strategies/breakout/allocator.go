package breakout

import (
	"breakout20/types"

	"github.com/shopspring/decimal"
)

// PercentAllocator sizes entries as a fixed fraction of available cash and
// turns exit signals into orders for the whole position. The strategy itself
// never decides quantities.
type PercentAllocator struct {
	percent decimal.Decimal
}

// NewPercentAllocator takes the fraction of cash committed per entry, e.g.
// 0.10 for ten percent.
func NewPercentAllocator(percent decimal.Decimal) *PercentAllocator {
	return &PercentAllocator{percent: percent}
}

func (a *PercentAllocator) Allocate(signals []types.Signal, view types.PortfolioView) []types.Order {
	var orders []types.Order

	for _, sig := range signals {
		pos := view.Positions[sig.Ticker]

		switch sig.Side {
		case types.SideTypeBuy:
			if !pos.Quantity.IsZero() {
				continue // no pyramiding
			}
			if sig.Price.IsZero() {
				continue
			}
			qty := view.Cash.Mul(a.percent).Div(sig.Price).Floor()
			if qty.IsZero() {
				continue
			}
			orders = append(orders, types.Order{
				Ticker:    sig.Ticker,
				Side:      types.SideTypeBuy,
				Quantity:  qty,
				Price:     sig.Price,
				Reason:    sig.Reason,
				CreatedAt: sig.CreatedAt,
			})

		case types.SideTypeSell:
			if !pos.Quantity.IsPositive() {
				continue
			}
			orders = append(orders, types.Order{
				Ticker:    sig.Ticker,
				Side:      types.SideTypeSell,
				Quantity:  pos.Quantity,
				Price:     sig.Price,
				Reason:    sig.Reason,
				CreatedAt: sig.CreatedAt,
			})
		}
	}

	return orders
}
