package bot

import (
	"fmt"
	"sync"
	"time"

	"btc-trade-bot-go/internal/config"
	"btc-trade-bot-go/internal/cycle"
	"btc-trade-bot-go/internal/events"
	"btc-trade-bot-go/internal/models"
	"btc-trade-bot-go/internal/pricing"
	"btc-trade-bot-go/internal/repository"
	"btc-trade-bot-go/internal/strategy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine is the live trading engine. It owns one portfolio and one strategy
// instance and runs one decision cycle per tick. All mutating operations
// (start/stop, tick, strategy swap, cycle refresh) are serialized under a
// single mutex so that a swap or a protective sell is atomic with respect to
// a running decision cycle.
type Engine struct {
	logger    *zap.Logger
	cfg       *config.Config
	provider  pricing.Provider
	repo      repository.TradeRepository
	publisher *events.Publisher
	detector  *cycle.Detector
	pipeline  *decisionPipeline

	uuid      string
	startTime time.Time

	mu           sync.Mutex
	running      bool
	portfolio    *Portfolio
	strategy     strategy.Strategy
	strategyName string
	currentCycle models.MarketCycle
	lastPrice    float64
}

// NewEngine creates a trading engine with a fresh portfolio and the strategy
// selected by the configuration.
func NewEngine(
	logger *zap.Logger,
	cfg *config.Config,
	provider pricing.Provider,
	repo repository.TradeRepository,
	publisher *events.Publisher,
	detector *cycle.Detector,
) (*Engine, error) {
	strat, err := strategy.New(&cfg.Strategy, logger)
	if err != nil {
		return nil, fmt.Errorf("could not build strategy: %w", err)
	}

	return &Engine{
		logger:       logger,
		cfg:          cfg,
		provider:     provider,
		repo:         repo,
		publisher:    publisher,
		detector:     detector,
		pipeline:     newDecisionPipeline(&cfg.Trading),
		uuid:         uuid.NewString(),
		startTime:    time.Now(),
		portfolio:    NewPortfolio(cfg.Trading.InitialBalance),
		strategy:     strat,
		strategyName: strat.Name(),
		currentCycle: models.CycleUnknown,
	}, nil
}

// Start enables trading. Starting an already running engine is a logged no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.logger.Warn("Engine is already running")
		return
	}
	e.running = true
	e.logger.Info("Engine started",
		zap.String("strategy", e.strategyName),
		zap.Float64("balance", e.portfolio.Balance()))
}

// Stop disables trading. Stopping a stopped engine is a logged no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		e.logger.Warn("Engine is already stopped")
		return
	}
	e.running = false
	e.logger.Info("Engine stopped")
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() models.BotStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	return models.BotStatus{
		UUID:        e.uuid,
		Running:     e.running,
		Balance:     e.portfolio.Balance(),
		Holdings:    e.portfolio.Holdings(),
		LastPrice:   e.lastPrice,
		TotalValue:  e.portfolio.TotalValue(e.lastPrice),
		MarketCycle: e.currentCycle,
		Strategy:    e.strategyName,
		StartTime:   e.startTime.Format(time.RFC3339),
	}
}

// StrategyName returns the name of the active strategy.
func (e *Engine) StrategyName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strategyName
}

// UpdateStrategy replaces the active strategy with a freshly built instance
// of the given type. The swap is atomic: an in-flight decision cycle sees
// either the old or the new strategy, never a mix.
func (e *Engine) UpdateStrategy(strategyType string) error {
	params := e.cfg.Strategy
	params.Type = strategyType
	strat, err := strategy.New(&params, e.logger)
	if err != nil {
		return fmt.Errorf("could not update strategy: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	old := e.strategyName
	e.strategy = strat
	e.strategyName = strat.Name()
	e.logger.Info("Strategy updated",
		zap.String("old", old),
		zap.String("new", e.strategyName))
	return nil
}

// Tick runs one decision cycle against the live portfolio. A price fetch
// failure aborts only this tick; the engine waits for the next one.
func (e *Engine) Tick() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		e.logger.Debug("Engine is stopped, skipping tick")
		return nil
	}

	price, err := e.provider.CurrentPrice()
	if err != nil {
		return fmt.Errorf("could not get current price: %w", err)
	}
	e.lastPrice = price.Value
	e.logger.Info("Price observed", zap.Float64("price", price.Value))

	signal, reason := e.pipeline.decide(price.Value, e.portfolio, e.strategy, e.currentCycle)

	outcome := applySignal(e.portfolio, signal, price.Value)
	if outcome == nil {
		e.logger.Info("No trade this tick",
			zap.String("signal", string(signal)),
			zap.String("reason", reason),
			zap.Float64("total_value", e.portfolio.TotalValue(price.Value)))
		return nil
	}

	e.recordTrade(outcome, reason, price.Timestamp)
	return nil
}

// RefreshCycle re-classifies the market regime from recent history. Intended
// to run on a coarse schedule, independent of the tick loop. A fetch or
// classification failure degrades the regime to UNKNOWN instead of
// propagating. If the new regime is disallowed while the portfolio holds, a
// protective sell is executed immediately, bypassing strategy analysis.
func (e *Engine) RefreshCycle() {
	e.mu.Lock()
	defer e.mu.Unlock()

	prices, err := e.provider.HistoricalPrices(e.cfg.Cycle.AnalysisWindowDays)
	if err != nil {
		e.logger.Error("Could not fetch history for cycle refresh, regime set to UNKNOWN", zap.Error(err))
		e.currentCycle = models.CycleUnknown
		return
	}

	previous := e.currentCycle
	e.currentCycle = e.detector.Detect(prices)
	if e.currentCycle != previous {
		e.logger.Info("Market cycle changed",
			zap.String("from", string(previous)),
			zap.String("to", string(e.currentCycle)))
	}

	if e.pipeline.cycleAllowed(e.currentCycle) || !e.portfolio.HasHoldings() {
		return
	}

	// Holding through a disallowed regime; sell at the freshest price we have.
	sellPrice := e.lastPrice
	if sellPrice <= 0 && len(prices) > 0 {
		sellPrice = prices[len(prices)-1].Value
	}
	if sellPrice <= 0 {
		e.logger.Error("No usable price for protective sell, keeping position")
		return
	}

	e.logger.Warn("Regime disallowed while holding, executing protective sell",
		zap.String("cycle", string(e.currentCycle)),
		zap.Float64("price", sellPrice))

	if outcome := applySignal(e.portfolio, models.SignalSell, sellPrice); outcome != nil {
		e.recordTrade(outcome, ReasonCycleProtection, time.Now())
	}
}

// recordTrade persists an executed live trade and publishes it to
// subscribers. A persistence failure is logged but does not undo the trade;
// the portfolio state is already the source of truth.
func (e *Engine) recordTrade(outcome *tradeOutcome, reason string, timestamp time.Time) {
	trade := models.Trade{
		Timestamp:     timestamp,
		Type:          outcome.Type,
		Price:         outcome.Price,
		Quantity:      outcome.Quantity,
		BalanceBefore: outcome.BalanceBefore,
		BalanceAfter:  outcome.BalanceAfter,
		ProfitLossPct: outcome.ProfitLossPct,
		Strategy:      e.strategyName,
		MarketCycle:   e.currentCycle,
		Reason:        reason,
	}

	saved, err := e.repo.Save(trade)
	if err != nil {
		e.logger.Error("Failed to save trade record", zap.Error(err))
		saved = trade
	} else {
		e.logger.Info("Trade executed",
			zap.Uint("trade_id", saved.ID),
			zap.String("type", string(saved.Type)),
			zap.Float64("price", saved.Price),
			zap.Float64("quantity", saved.Quantity),
			zap.String("reason", reason))
	}

	e.publisher.Publish(saved)
}
