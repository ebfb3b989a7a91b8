package engine

import (
	"math"
	"strconv"
	"time"
)

const (
	tradingDaysPerYear = 252
	daysPerYear        = 365.25

	// DefaultRiskFreeRate is the annual risk-free rate used for the Sharpe
	// ratio when the config does not override it.
	DefaultRiskFreeRate = 0.01
)

// ProfitFactor is gross winning P&L over gross losing P&L magnitude. When
// there are no losing trades but there is profit, the value is the Infinite
// sentinel; a float64 infinity never appears in summaries or serialization.
type ProfitFactor struct {
	Ratio    float64
	Infinite bool
}

func (pf ProfitFactor) String() string {
	if pf.Infinite {
		return "Inf"
	}
	return strconv.FormatFloat(pf.Ratio, 'f', 2, 64)
}

// Summary holds the end-of-run statistics, unrounded. Rounding happens only
// when fields are rendered for reporting.
type Summary struct {
	StartDate  time.Time
	EndDate    time.Time
	StartValue float64
	EndValue   float64

	TotalReturnPct float64
	CAGRPct        float64
	SharpeRatio    float64
	VolatilityPct  float64

	MaxDrawdownPct  float64
	MaxDrawdownDays int

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRatePct    float64
	ProfitFactor  ProfitFactor

	AvgWinningTrade float64
	AvgLosingTrade  float64
	BestTrade       float64
	WorstTrade      float64
	AvgHoldingDays  float64

	TotalCommission float64
	TradingDays     int
}

// CalculateSummary derives the summary from the equity curve and the closed
// trades. It is a pure function of its inputs: calling it twice on the same
// tracker and ledger yields identical results. Degenerate inputs (no trades,
// a single equity point, zero losses) resolve to defined values, never to a
// panic or a division by zero.
func CalculateSummary(equity *EquityTracker, ledger *TradeLedger, riskFreeRate float64) Summary {
	s := Summary{}

	points := equity.Points()
	s.TradingDays = len(points)
	if len(points) > 0 {
		s.StartDate = points[0].Date
		s.EndDate = points[len(points)-1].Date
		s.StartValue = points[0].Value.InexactFloat64()
		s.EndValue = points[len(points)-1].Value.InexactFloat64()
	}

	if s.StartValue > 0 {
		s.TotalReturnPct = (s.EndValue - s.StartValue) / s.StartValue * 100
	}
	s.CAGRPct = cagr(s.StartValue, s.EndValue, s.StartDate, s.EndDate) * 100

	returns := dailyReturns(points)
	s.VolatilityPct = annualizedStddev(returns) * 100
	s.SharpeRatio = sharpe(returns, riskFreeRate)

	s.MaxDrawdownPct = equity.MaxDrawdown().InexactFloat64() * 100
	s.MaxDrawdownDays = equity.MaxDrawdownDays()

	trades := ledger.Trades()
	s.TotalTrades = len(trades)

	var sumWins, sumLosses, sumHolding float64
	for i, t := range trades {
		net := t.NetPnL.InexactFloat64()
		sumHolding += float64(t.HoldingDays)
		if i == 0 || net > s.BestTrade {
			s.BestTrade = net
		}
		if i == 0 || net < s.WorstTrade {
			s.WorstTrade = net
		}
		switch {
		case net > 0:
			s.WinningTrades++
			sumWins += net
		case net < 0:
			s.LosingTrades++
			sumLosses += net
		}
	}

	if s.TotalTrades > 0 {
		s.WinRatePct = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
		s.AvgHoldingDays = sumHolding / float64(s.TotalTrades)
	}
	if s.WinningTrades > 0 {
		s.AvgWinningTrade = sumWins / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLosingTrade = sumLosses / float64(s.LosingTrades)
	}

	switch {
	case sumLosses != 0:
		s.ProfitFactor = ProfitFactor{Ratio: sumWins / math.Abs(sumLosses)}
	case sumWins > 0:
		s.ProfitFactor = ProfitFactor{Infinite: true}
	default:
		s.ProfitFactor = ProfitFactor{}
	}

	s.TotalCommission = ledger.TotalCommission().InexactFloat64()

	return s
}

func cagr(startValue, endValue float64, startDate, endDate time.Time) float64 {
	if startValue <= 0 || endValue <= 0 {
		return 0
	}
	days := endDate.Sub(startDate).Hours() / 24
	if days <= 0 {
		return 0
	}
	years := days / daysPerYear
	return math.Pow(endValue/startValue, 1/years) - 1
}

func dailyReturns(points []EquityPoint) []float64 {
	if len(points) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(points)-1)
	prev := points[0].Value.InexactFloat64()
	for _, p := range points[1:] {
		cur := p.Value.InexactFloat64()
		if prev != 0 {
			returns = append(returns, (cur-prev)/prev)
		}
		prev = cur
	}
	return returns
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// annualizedStddev is the sample standard deviation of daily returns scaled
// by sqrt(252). Fewer than two returns yield 0.
func annualizedStddev(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	m := mean(returns)
	var varianceSum float64
	for _, r := range returns {
		diff := r - m
		varianceSum += diff * diff
	}
	daily := math.Sqrt(varianceSum / float64(len(returns)-1))
	return daily * math.Sqrt(tradingDaysPerYear)
}

// sharpe is (annualized mean return - risk free) / annualized volatility,
// with 0 for degenerate inputs rather than an error.
func sharpe(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	vol := annualizedStddev(returns)
	if vol == 0 {
		return 0
	}
	annualReturn := math.Pow(1+mean(returns), tradingDaysPerYear) - 1
	return (annualReturn - riskFreeRate) / vol
}

// Field is one summary entry rendered for reporting. Values are rounded
// here and nowhere earlier: percentages to 2 decimals, Sharpe to 3.
type Field struct {
	Key   string
	Value string
}

// Fields returns the summary in its fixed reporting order.
func (s Summary) Fields() []Field {
	return []Field{
		{"start_date", formatDate(s.StartDate)},
		{"end_date", formatDate(s.EndDate)},
		{"start_value", f2(s.StartValue)},
		{"end_value", f2(s.EndValue)},
		{"total_return_pct", f2(s.TotalReturnPct)},
		{"cagr_pct", f2(s.CAGRPct)},
		{"sharpe_ratio", strconv.FormatFloat(s.SharpeRatio, 'f', 3, 64)},
		{"volatility_pct", f2(s.VolatilityPct)},
		{"max_drawdown_pct", f2(s.MaxDrawdownPct)},
		{"max_drawdown_days", strconv.Itoa(s.MaxDrawdownDays)},
		{"total_trades", strconv.Itoa(s.TotalTrades)},
		{"winning_trades", strconv.Itoa(s.WinningTrades)},
		{"losing_trades", strconv.Itoa(s.LosingTrades)},
		{"win_rate_pct", f2(s.WinRatePct)},
		{"profit_factor", s.ProfitFactor.String()},
		{"avg_winning_trade", f2(s.AvgWinningTrade)},
		{"avg_losing_trade", f2(s.AvgLosingTrade)},
		{"best_trade", f2(s.BestTrade)},
		{"worst_trade", f2(s.WorstTrade)},
		{"avg_holding_days", strconv.FormatFloat(s.AvgHoldingDays, 'f', 1, 64)},
		{"total_commission", f2(s.TotalCommission)},
		{"trading_days", strconv.Itoa(s.TradingDays)},
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
