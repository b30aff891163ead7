package bot

import (
	"fmt"
	"time"

	"btc-trade-bot-go/internal/config"
	"btc-trade-bot-go/internal/cycle"
	"btc-trade-bot-go/internal/models"
	"btc-trade-bot-go/internal/pricing"
	"btc-trade-bot-go/internal/strategy"
	"go.uber.org/zap"
)

// Backtester replays the live decision pipeline over historical prices
// against its own portfolio and a fresh strategy instance, so runs never
// touch live state and may execute concurrently with live trading.
//
// The market regime for the whole replay is classified once from the
// backtest window itself, not taken from the live engine. This keeps a
// backtest reproducible from its inputs alone: the same window and
// configuration always produce the same ledger.
type Backtester struct {
	logger   *zap.Logger
	cfg      *config.Config
	provider pricing.Provider
	detector *cycle.Detector
	engine   *Engine
}

// NewBacktester creates a backtest runner that snapshots its strategy type
// from the given engine at the start of each run.
func NewBacktester(
	logger *zap.Logger,
	cfg *config.Config,
	provider pricing.Provider,
	detector *cycle.Detector,
	engine *Engine,
) *Backtester {
	return &Backtester{
		logger:   logger,
		cfg:      cfg,
		provider: provider,
		detector: detector,
		engine:   engine,
	}
}

// Run replays `days` of history with the given starting cash. An empty
// historical series is an error: there is nothing to replay.
func (b *Backtester) Run(days int, initialBalance float64) (*models.BacktestResult, error) {
	if days <= 0 {
		return nil, fmt.Errorf("backtest days must be positive, got %d", days)
	}
	if initialBalance <= 0 {
		return nil, fmt.Errorf("backtest initial balance must be positive, got %v", initialBalance)
	}

	b.logger.Info("Starting backtest",
		zap.Int("days", days),
		zap.Float64("initial_balance", initialBalance))

	prices, err := b.provider.HistoricalPrices(days)
	if err != nil {
		return nil, fmt.Errorf("could not get historical prices: %w", err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no historical price data available for backtest")
	}

	// Fresh strategy of the engine's current type; strategies are stateful
	// and must not be shared with the live engine.
	params := b.cfg.Strategy
	params.Type = b.engine.StrategyName()
	strat, err := strategy.New(&params, b.logger)
	if err != nil {
		return nil, fmt.Errorf("could not build backtest strategy: %w", err)
	}

	backtestCycle := b.detector.Detect(prices)
	b.logger.Info("Backtest window market cycle", zap.String("cycle", string(backtestCycle)))

	pipeline := newDecisionPipeline(&b.cfg.Trading)
	portfolio := NewPortfolio(initialBalance)

	// Synthetic evenly-spaced timestamps for points that carry none.
	spanStart := time.Now().AddDate(0, 0, -days)
	interval := time.Duration(days) * 24 * time.Hour / time.Duration(len(prices))

	var trades []models.Trade
	buyTrades := 0
	sellTrades := 0

	for i, price := range prices {
		signal, reason := pipeline.decide(price.Value, portfolio, strat, backtestCycle)

		outcome := applySignal(portfolio, signal, price.Value)
		if outcome == nil {
			continue
		}

		timestamp := price.Timestamp
		if timestamp.IsZero() {
			timestamp = spanStart.Add(time.Duration(i) * interval)
		}

		trade := models.Trade{
			Timestamp:     timestamp,
			Type:          outcome.Type,
			Price:         outcome.Price,
			Quantity:      outcome.Quantity,
			BalanceBefore: outcome.BalanceBefore,
			BalanceAfter:  outcome.BalanceAfter,
			ProfitLossPct: outcome.ProfitLossPct,
			Strategy:      strat.Name(),
			MarketCycle:   backtestCycle,
			Reason:        reason,
		}

		switch outcome.Type {
		case models.SignalBuy:
			buyTrades++
		case models.SignalSell:
			sellTrades++
			if pnl, ok := sellProfitPct(trades, outcome.BalanceAfter); ok {
				trade.ProfitLossPct = &pnl
			}
		}

		trades = append(trades, trade)
	}

	// Liquidate any residual position at the final price.
	if portfolio.HasHoldings() {
		portfolio.Sell(prices[len(prices)-1].Value)
	}

	result := &models.BacktestResult{
		InitialBalance:     initialBalance,
		FinalBalance:       portfolio.Balance(),
		BuyTrades:          buyTrades,
		SellTrades:         sellTrades,
		Days:               days,
		Strategy:           strat.Name(),
		StrategyParameters: strat.Parameters(),
		Trades:             trades,
	}

	b.logger.Info("Backtest completed",
		zap.String("strategy", result.Strategy),
		zap.Float64("profit_loss", result.ProfitLoss()),
		zap.Float64("profit_loss_pct", result.ProfitLossPct()),
		zap.Int("trades", len(trades)))

	return result, nil
}

// sellProfitPct computes a SELL's profit percentage by walking the ledger
// backward to the most recent BUY and comparing the sale revenue to that
// BUY's cash cost.
func sellProfitPct(trades []models.Trade, revenue float64) (float64, bool) {
	for i := len(trades) - 1; i >= 0; i-- {
		if trades[i].Type == models.SignalBuy {
			cost := trades[i].BalanceBefore
			if cost <= 0 {
				return 0, false
			}
			return ((revenue - cost) / cost) * 100, true
		}
	}
	return 0, false
}
