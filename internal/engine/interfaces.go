package engine

import (
	"breakout20/types"

	"github.com/shopspring/decimal"
)

// Strategy consumes bars and fill notifications and emits entry/exit intents.
// Fill and rejection callbacks may fail: a notification that violates the
// pending-order protocol aborts the run.
type Strategy interface {
	OnCandle(c types.Candle, view types.PortfolioView) []types.Signal
	OnOrderSubmitted(ticker, orderID string)
	OnOrderFilled(fill types.Fill, fillBar types.Candle) error
	OnOrderRejected(rej types.Rejection) error
}

// Allocator turns unsized intents into sized orders.
type Allocator interface {
	Allocate(signals []types.Signal, view types.PortfolioView) []types.Order
}

// Broker is the execution engine. Submit queues an order and returns its id;
// Execute resolves pending orders for the bar's instrument before the bar is
// handed to the strategy; CancelAll rejects leftovers at end of data.
type Broker interface {
	Submit(order types.Order) string
	Execute(c types.Candle, cash decimal.Decimal) ([]types.Fill, []types.Rejection)
	CancelAll() []types.Rejection
}
