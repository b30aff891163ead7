package bot

import (
	"btc-trade-bot-go/internal/config"
	"btc-trade-bot-go/internal/models"
	"btc-trade-bot-go/internal/strategy"
)

// Trade reasons attached to executed trades.
const (
	ReasonTrailingStop    = "trailing stop-loss"
	ReasonTakeProfit      = "take profit"
	ReasonCycleProtection = "cycle protection"
	ReasonStrategySignal  = "strategy signal"
)

// decisionPipeline evaluates one price sample against a portfolio in strict
// priority order: peak update, trailing stop, take profit, market-cycle gate,
// then the signal strategy. The live engine and the backtester both run the
// same pipeline, each against their own portfolio and strategy instance.
type decisionPipeline struct {
	trailingStopEnabled bool
	trailingStopPct     float64
	takeProfitEnabled   bool
	takeProfitPct       float64
	allowedCycles       map[models.MarketCycle]bool
}

func newDecisionPipeline(cfg *config.Trading) *decisionPipeline {
	// An empty allowed_cycles list disables the gate entirely.
	var allowed map[models.MarketCycle]bool
	if len(cfg.AllowedCycles) > 0 {
		allowed = make(map[models.MarketCycle]bool, len(cfg.AllowedCycles))
		for _, name := range cfg.AllowedCycles {
			if c, ok := models.ParseMarketCycle(name); ok {
				allowed[c] = true
			}
		}
	}
	return &decisionPipeline{
		trailingStopEnabled: cfg.TrailingStopEnabled,
		trailingStopPct:     cfg.TrailingStopPct,
		takeProfitEnabled:   cfg.TakeProfitEnabled,
		takeProfitPct:       cfg.TakeProfitPct,
		allowedCycles:       allowed,
	}
}

func (d *decisionPipeline) cycleAllowed(cycle models.MarketCycle) bool {
	return d.allowedCycles == nil || d.allowedCycles[cycle]
}

// decide returns the signal to execute and the reason it was chosen. Risk
// overrides take priority over the strategy; the strategy is not consulted at
// all when a risk rule or the cycle gate fires.
func (d *decisionPipeline) decide(price float64, pf *Portfolio, strat strategy.Strategy, cycle models.MarketCycle) (models.Signal, string) {
	pf.UpdatePeak(price)

	if d.trailingStopEnabled && pf.ShouldTrailingStop(price, d.trailingStopPct) {
		return models.SignalSell, ReasonTrailingStop
	}

	if d.takeProfitEnabled && pf.ShouldTakeProfit(price, d.takeProfitPct) {
		return models.SignalSell, ReasonTakeProfit
	}

	if !d.cycleAllowed(cycle) {
		if pf.HasHoldings() {
			return models.SignalSell, ReasonCycleProtection
		}
		return models.SignalHold, ReasonCycleProtection
	}

	return strat.Analyze(price), ReasonStrategySignal
}

// tradeOutcome describes a BUY or SELL that actually changed the portfolio.
type tradeOutcome struct {
	Type          models.Signal
	Price         float64
	Quantity      float64
	BalanceBefore float64
	BalanceAfter  float64
	ProfitLossPct *float64 // SELL only
}

// applySignal executes the signal against the portfolio. BUY acts only with
// cash available, SELL only with holdings; anything else returns nil. The
// SELL profit percentage is taken from the portfolio state immediately before
// the sale.
func applySignal(pf *Portfolio, signal models.Signal, price float64) *tradeOutcome {
	switch signal {
	case models.SignalBuy:
		if !pf.HasBalance() {
			return nil
		}
		balanceBefore := pf.Balance()
		pf.Buy(price)
		return &tradeOutcome{
			Type:          models.SignalBuy,
			Price:         price,
			Quantity:      pf.Holdings(),
			BalanceBefore: balanceBefore,
			BalanceAfter:  pf.Balance(),
		}

	case models.SignalSell:
		if !pf.HasHoldings() {
			return nil
		}
		balanceBefore := pf.Balance()
		quantity := pf.Holdings()
		pnl := pf.CurrentPnlPct(price)
		pf.Sell(price)
		return &tradeOutcome{
			Type:          models.SignalSell,
			Price:         price,
			Quantity:      quantity,
			BalanceBefore: balanceBefore,
			BalanceAfter:  pf.Balance(),
			ProfitLossPct: &pnl,
		}
	}

	return nil
}
