package engine

import (
	"fmt"
	"io"
)

// PrintSummary renders the human-readable run report.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, "===== Backtest Report =====")
	fmt.Fprintf(w, "Period:                %s ~ %s\n", formatDate(s.StartDate), formatDate(s.EndDate))
	fmt.Fprintf(w, "Start Value:           %s\n", f2(s.StartValue))
	fmt.Fprintf(w, "End Value:             %s\n", f2(s.EndValue))

	fmt.Fprintln(w, "\n-- Returns --")
	fmt.Fprintf(w, "Total Return:          %s%%\n", f2(s.TotalReturnPct))
	fmt.Fprintf(w, "CAGR:                  %s%%\n", f2(s.CAGRPct))
	fmt.Fprintf(w, "Sharpe Ratio:          %.3f\n", s.SharpeRatio)
	fmt.Fprintf(w, "Volatility:            %s%%\n", f2(s.VolatilityPct))

	fmt.Fprintln(w, "\n-- Risk --")
	fmt.Fprintf(w, "Max Drawdown:          %s%%\n", f2(s.MaxDrawdownPct))
	fmt.Fprintf(w, "Max Drawdown Days:     %d\n", s.MaxDrawdownDays)

	fmt.Fprintln(w, "\n-- Trades --")
	fmt.Fprintf(w, "Total Trades:          %d\n", s.TotalTrades)
	fmt.Fprintf(w, "Winning / Losing:      %d / %d\n", s.WinningTrades, s.LosingTrades)
	fmt.Fprintf(w, "Win Rate:              %s%%\n", f2(s.WinRatePct))
	fmt.Fprintf(w, "Profit Factor:         %s\n", s.ProfitFactor)
	fmt.Fprintf(w, "Avg Win / Avg Loss:    %s / %s\n", f2(s.AvgWinningTrade), f2(s.AvgLosingTrade))
	fmt.Fprintf(w, "Best / Worst Trade:    %s / %s\n", f2(s.BestTrade), f2(s.WorstTrade))
	fmt.Fprintf(w, "Avg Holding Days:      %.1f\n", s.AvgHoldingDays)

	fmt.Fprintln(w, "\n-- Costs --")
	fmt.Fprintf(w, "Total Commission:      %s\n", f2(s.TotalCommission))
	fmt.Fprintf(w, "Trading Days:          %d\n", s.TradingDays)
	fmt.Fprintln(w, "===========================")
}
