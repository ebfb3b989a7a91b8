package breakout

import (
	"breakout20/types"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// SimBroker is the simulated execution engine used for backtests. Orders are
// market orders filled at the open of the instrument's next bar, so a
// submitted order always resolves before that instrument's next bar is
// evaluated.
//
//   - Commission is a flat rate on trade value.
//   - Buys are rejected when price*qty+commission exceeds available cash.
//   - Sells always fill; proceeds net of commission.
type SimBroker struct {
	commissionRate decimal.Decimal
	pending        map[string][]types.Order
}

func NewSimBroker(commissionRate decimal.Decimal) *SimBroker {
	return &SimBroker{
		commissionRate: commissionRate,
		pending:        make(map[string][]types.Order),
	}
}

// Submit queues an order and returns its assigned id.
func (b *SimBroker) Submit(order types.Order) string {
	order.ID = ulid.Make().String()
	b.pending[order.Ticker] = append(b.pending[order.Ticker], order)
	return order.ID
}

// Execute resolves every pending order for the bar's instrument at the bar's
// open. cash is the portfolio cash available at that moment.
func (b *SimBroker) Execute(c types.Candle, cash decimal.Decimal) ([]types.Fill, []types.Rejection) {
	orders := b.pending[c.Ticker]
	if len(orders) == 0 {
		return nil, nil
	}
	delete(b.pending, c.Ticker)

	var fills []types.Fill
	var rejections []types.Rejection

	for _, order := range orders {
		if order.Quantity.LessThanOrEqual(decimal.Zero) {
			rejections = append(rejections, types.Rejection{
				OrderID: order.ID,
				Ticker:  order.Ticker,
				Reason:  "non-positive order quantity",
			})
			continue
		}

		fillPrice := c.Open
		value := fillPrice.Mul(order.Quantity)
		commission := value.Mul(b.commissionRate)

		if order.Side == types.SideTypeBuy {
			cost := value.Add(commission)
			if cost.GreaterThan(cash) {
				rejections = append(rejections, types.Rejection{
					OrderID: order.ID,
					Ticker:  order.Ticker,
					Reason:  "insufficient cash",
				})
				continue
			}
			cash = cash.Sub(cost)
		} else {
			cash = cash.Add(value).Sub(commission)
		}

		fills = append(fills, types.Fill{
			OrderID:    order.ID,
			Ticker:     order.Ticker,
			Side:       order.Side,
			Price:      fillPrice,
			Quantity:   order.Quantity,
			Commission: commission,
			Time:       c.Date,
		})
	}

	return fills, rejections
}

// CancelAll rejects whatever is still queued. The engine calls this when the
// data runs out so no order is left unresolved.
func (b *SimBroker) CancelAll() []types.Rejection {
	var rejections []types.Rejection
	for ticker, orders := range b.pending {
		for _, order := range orders {
			rejections = append(rejections, types.Rejection{
				OrderID: order.ID,
				Ticker:  ticker,
				Reason:  "end of data",
			})
		}
	}
	b.pending = make(map[string][]types.Order)
	return rejections
}
