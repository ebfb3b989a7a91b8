package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"breakout20/internal/config"
	"breakout20/internal/engine"
	"breakout20/internal/journal"
	"breakout20/internal/logger"
	"breakout20/internal/repository"
	"breakout20/internal/universe"
	"breakout20/strategies/breakout"
)

// ATR above this fraction of the close suppresses entries when the
// volatility filter is enabled.
const maxATRFraction = "0.05"

func runBacktest(ctx context.Context, configPath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.Logging.Level)

	symbols, err := universe.LoadSymbols(cfg.SymbolFiles)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols in %v", cfg.SymbolFiles)
	}
	logger.L().Info("loaded universe", "symbols", len(symbols), "files", len(cfg.SymbolFiles))

	db, err := repository.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect datasource: %w", err)
	}
	defer db.Close()

	feeds, err := loadFeeds(ctx, db, cfg, symbols)
	if err != nil {
		return err
	}
	if len(feeds) == 0 {
		return fmt.Errorf("no candle data for any symbol between %s and %s", cfg.StartDate, cfg.EndDate)
	}

	strat := buildStrategy(cfg)
	alloc := breakout.NewPercentAllocator(decimal.NewFromFloat(cfg.Sizer.Percent))
	broker := breakout.NewSimBroker(decimal.NewFromFloat(cfg.Commission))

	eng := engine.NewEngine(feeds, strat, alloc, broker,
		decimal.NewFromFloat(cfg.Cash),
		engine.RunOptions{
			ShowProgress: true,
			RiskFreeRate: cfg.Strategy.RiskFreeRate,
		})

	if err := eng.Run(); err != nil {
		return err
	}

	summary := eng.Summary()
	trades := eng.Ledger().SortedByEntryDate()

	if cfg.Output.ShowSummary {
		engine.PrintSummary(os.Stdout, summary)
	}
	if cfg.Output.ShowTrades {
		if err := engine.WriteTradesCSV(os.Stdout, trades); err != nil {
			return err
		}
	}
	if cfg.Output.CSVPath != "" {
		if err := engine.WriteTradesFile(cfg.Output.CSVPath, trades); err != nil {
			return fmt.Errorf("write trades: %w", err)
		}
		logger.L().Info("wrote trade results", "path", cfg.Output.CSVPath, "trades", len(trades))
	}
	if cfg.Output.SummaryPath != "" {
		if err := engine.WriteSummaryFile(cfg.Output.SummaryPath, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		logger.L().Info("wrote summary", "path", cfg.Output.SummaryPath)
	}
	if cfg.Output.JournalPath != "" {
		if err := persistRun(cfg, eng, summary); err != nil {
			return fmt.Errorf("journal run: %w", err)
		}
	}
	return nil
}

// loadFeeds pulls daily candles for every symbol. Symbols the datasource
// does not know, or has no candles for in the window, are skipped with a
// warning rather than failing the whole run.
func loadFeeds(ctx context.Context, db *repository.Database, cfg *config.Config, symbols []string) ([]*engine.Feed, error) {
	var feeds []*engine.Feed
	for _, sym := range symbols {
		candles, err := db.GetDailyCandles(ctx, sym, cfg.Start(), cfg.End())
		if err != nil {
			if errors.Is(err, repository.ErrAssetNotFound) || errors.Is(err, repository.ErrNoCandles) {
				logger.L().Warn("skipping symbol", "symbol", sym, "reason", err)
				continue
			}
			return nil, fmt.Errorf("load candles for %s: %w", sym, err)
		}
		feeds = append(feeds, &engine.Feed{Ticker: sym, Candles: candles})
	}
	return feeds, nil
}

func buildStrategy(cfg *config.Config) *breakout.Strategy {
	sc := breakout.Config{
		SMAWindow:  cfg.Strategy.SMAWindow,
		HighWindow: cfg.Strategy.HighWindow,
		ATRPeriod:  cfg.Strategy.ATRPeriod,
	}
	if !cfg.Strategy.Optimized {
		return breakout.New(sc)
	}

	filters := []breakout.EntryFilter{
		breakout.MaxPositionsFilter{Max: cfg.Strategy.MaxPositions},
		breakout.MinVolumeFilter{Min: decimal.NewFromFloat(cfg.Strategy.MinVolume)},
	}
	if cfg.Strategy.VolatilityFilter {
		filters = append(filters, breakout.VolatilityFilter{
			MaxATRFraction: decimal.RequireFromString(maxATRFraction),
		})
	}
	return breakout.New(sc, filters...)
}

func persistRun(cfg *config.Config, eng *engine.Engine, summary engine.Summary) error {
	j, err := journal.NewSQLite(cfg.Output.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	cfgYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	runID, err := j.RecordRun(summary, cfg.Cash, string(cfgYAML))
	if err != nil {
		return err
	}
	if err := j.RecordTrades(runID, eng.Ledger().SortedByEntryDate()); err != nil {
		return err
	}
	if err := j.RecordEquity(runID, eng.Equity().Points()); err != nil {
		return err
	}
	logger.L().Info("journaled run", "run_id", runID, "path", cfg.Output.JournalPath)
	return nil
}
