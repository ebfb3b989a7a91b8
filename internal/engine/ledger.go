package engine

import (
	"sort"

	"breakout20/types"

	"github.com/shopspring/decimal"
)

// TradeLedger accumulates closed trades in the order positions close. Records
// are immutable once appended.
type TradeLedger struct {
	trades []types.TradeRecord
}

func NewTradeLedger() *TradeLedger {
	return &TradeLedger{}
}

func (l *TradeLedger) Append(t types.TradeRecord) {
	l.trades = append(l.trades, t)
}

func (l *TradeLedger) Len() int {
	return len(l.trades)
}

// Trades returns a copy in close order.
func (l *TradeLedger) Trades() []types.TradeRecord {
	out := make([]types.TradeRecord, len(l.trades))
	copy(out, l.trades)
	return out
}

// SortedByEntryDate returns a copy sorted by entry date, the order used for
// export.
func (l *TradeLedger) SortedByEntryDate() []types.TradeRecord {
	out := l.Trades()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntryDate.Before(out[j].EntryDate)
	})
	return out
}

func (l *TradeLedger) TotalCommission() decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.trades {
		total = total.Add(t.Commission)
	}
	return total
}
