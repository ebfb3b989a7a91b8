package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

type OrderStatus string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"

	OrderPending  OrderStatus = "ORDER_PENDING"
	OrderFilled   OrderStatus = "ORDER_FILLED"
	OrderRejected OrderStatus = "ORDER_REJECTED"
	OrderCanceled OrderStatus = "ORDER_CANCELED"
)

// Signal is an entry or exit intent emitted by a strategy. Entry signals carry
// no quantity; sizing is the allocator's job. Exit signals always mean the
// whole position.
type Signal struct {
	Ticker    string
	Side      Side
	Price     decimal.Decimal
	Reason    string
	CreatedAt time.Time
}

func NewSignal(ticker string, side Side, price decimal.Decimal, reason string, createdAt time.Time) Signal {
	return Signal{
		Ticker:    ticker,
		Side:      side,
		Price:     price,
		Reason:    reason,
		CreatedAt: createdAt,
	}
}

// Order is a sized request handed to the broker. The broker assigns the ID on
// submission.
type Order struct {
	ID        string
	Ticker    string
	Side      Side
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Reason    string
	CreatedAt time.Time
}

// Fill confirms that an order executed.
type Fill struct {
	OrderID    string
	Ticker     string
	Side       Side
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	Commission decimal.Decimal
	Time       time.Time
}

// Rejection reports an order that did not execute. The strategy clears its
// pending flag and re-evaluates on the next bar.
type Rejection struct {
	OrderID string
	Ticker  string
	Reason  string
}
