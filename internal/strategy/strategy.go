package strategy

import (
	"fmt"

	"btc-trade-bot-go/internal/config"
	"btc-trade-bot-go/internal/models"
	"go.uber.org/zap"
)

// Strategy defines the interface for a signal strategy. Implementations are
// stateful: each Analyze call feeds one price sample into the strategy's
// indicator window, so a strategy instance must never be shared between a
// live engine and a backtest run.
type Strategy interface {
	// Name returns the canonical strategy type name.
	Name() string

	// Analyze feeds one price sample and returns the resulting signal.
	Analyze(price float64) models.Signal

	// Parameters returns the strategy's configuration for reporting.
	Parameters() map[string]string
}

// New builds the strategy selected by cfg.Type with a fresh indicator state.
func New(cfg *config.Strategy, logger *zap.Logger) (Strategy, error) {
	return newByName(cfg.Type, cfg, logger)
}

func newByName(name string, cfg *config.Strategy, logger *zap.Logger) (Strategy, error) {
	switch name {
	case "sma":
		return NewSimpleMovingAverage(cfg.SmaPeriod)
	case "ema-rsi":
		return NewEmaRsi(cfg.EmaPeriod, cfg.RsiPeriod, cfg.RsiOversold, cfg.RsiOverbought)
	case "macd":
		return NewMacd(cfg.MacdFast, cfg.MacdSlow, cfg.MacdSignal)
	case "composite":
		return newComposite(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown strategy type %q (supported: sma, ema-rsi, macd, composite)", name)
	}
}

func newComposite(cfg *config.Strategy, logger *zap.Logger) (Strategy, error) {
	if len(cfg.Composite.Strategies) != len(cfg.Composite.Weights) {
		return nil, fmt.Errorf("composite strategy count (%d) does not match weight count (%d)",
			len(cfg.Composite.Strategies), len(cfg.Composite.Weights))
	}
	if len(cfg.Composite.Strategies) == 0 {
		return nil, fmt.Errorf("composite strategy requires at least one sub-strategy")
	}

	weighted := make([]WeightedStrategy, 0, len(cfg.Composite.Strategies))
	for i, subName := range cfg.Composite.Strategies {
		if subName == "composite" {
			return nil, fmt.Errorf("composite strategy cannot nest another composite")
		}
		sub, err := newByName(subName, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("composite sub-strategy %q: %w", subName, err)
		}
		weighted = append(weighted, WeightedStrategy{
			Strategy: sub,
			Weight:   cfg.Composite.Weights[i],
			Name:     subName,
		})
	}

	return NewComposite(weighted, cfg.Composite.BuyThreshold, cfg.Composite.SellThreshold, logger)
}
