package cycle

import (
	"math"

	"btc-trade-bot-go/internal/config"
	"btc-trade-bot-go/internal/models"
	"go.uber.org/zap"
)

// Detector classifies the market regime from a window of historical prices.
// All thresholds come from configuration; the detector itself is stateless
// and safe to share.
type Detector struct {
	logger             *zap.Logger
	analysisWindowDays int
	crashThreshold     float64
	bullThreshold      float64
	volatilityLow      float64
	volatilityHigh     float64
}

// NewDetector creates a market cycle detector with the configured thresholds.
func NewDetector(cfg *config.Cycle, logger *zap.Logger) *Detector {
	return &Detector{
		logger:             logger,
		analysisWindowDays: cfg.AnalysisWindowDays,
		crashThreshold:     cfg.CrashThreshold,
		bullThreshold:      cfg.BullThreshold,
		volatilityLow:      cfg.VolatilityLow,
		volatilityHigh:     cfg.VolatilityHigh,
	}
}

// Detect classifies the regime over the given historical prices, ordered
// oldest to newest. Returns CycleUnknown when there is no data or fewer
// points than the analysis window.
func (d *Detector) Detect(historicalPrices []models.Price) models.MarketCycle {
	if len(historicalPrices) == 0 {
		d.logger.Warn("No historical data available for cycle detection")
		return models.CycleUnknown
	}

	prices := make([]float64, len(historicalPrices))
	for i, p := range historicalPrices {
		prices[i] = p.Value
	}

	if len(prices) < d.analysisWindowDays {
		d.logger.Warn("Insufficient data for reliable cycle detection",
			zap.Int("required", d.analysisWindowDays),
			zap.Int("got", len(prices)))
		return models.CycleUnknown
	}

	momentum := d.momentum(prices)
	volatility := volatility(prices)
	trend := trend(prices)
	recentChange := recentChange(prices)

	d.logger.Info("Market indicators computed",
		zap.Float64("momentum", momentum),
		zap.Float64("volatility", volatility),
		zap.Float64("trend", trend),
		zap.Float64("recent_change", recentChange))

	detected := d.classify(momentum, volatility, trend, recentChange)
	d.logger.Info("Detected market cycle", zap.String("cycle", string(detected)))

	return detected
}

// classify applies the threshold rules in precedence order; the first match
// wins, and sideways markets fall through to ACCUMULATION.
func (d *Detector) classify(momentum, volatility, trend, recentChange float64) models.MarketCycle {
	// Rapid recent drop with very high volatility.
	if recentChange < d.crashThreshold && volatility > d.volatilityHigh {
		return models.CycleCrash
	}

	// Strong sustained uptrend without crash-level volatility.
	if momentum > d.bullThreshold && trend > 5.0 && volatility < d.volatilityHigh {
		return models.CycleBullMarket
	}

	// Uptrend forming.
	if momentum > 5.0 && trend > 2.0 {
		return models.CycleMarkup
	}

	// Downtrend.
	if momentum < -5.0 && trend < -2.0 {
		return models.CycleDecline
	}

	// Quiet sideways market.
	if volatility < d.volatilityLow && math.Abs(momentum) < 5.0 {
		return models.CycleAccumulation
	}

	return models.CycleAccumulation
}

// momentum is the percent change from the price one analysis window back to
// the latest price.
func (d *Detector) momentum(prices []float64) float64 {
	windowSize := d.analysisWindowDays
	if windowSize > len(prices) {
		windowSize = len(prices)
	}
	oldPrice := prices[len(prices)-windowSize]
	currentPrice := prices[len(prices)-1]
	return ((currentPrice - oldPrice) / oldPrice) * 100.0
}

// volatility is the standard deviation of period-over-period returns.
func volatility(prices []float64) float64 {
	returns := make([]float64, len(prices)-1)
	for i := range returns {
		returns[i] = (prices[i+1] - prices[i]) / prices[i]
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance)
}

// trend is the percent difference between a short and a long SMA, relative
// to the long SMA.
func trend(prices []float64) float64 {
	shortPeriod := min(7, len(prices))
	longPeriod := min(30, len(prices))

	shortSMA := sma(prices, shortPeriod)
	longSMA := sma(prices, longPeriod)

	return ((shortSMA - longSMA) / longSMA) * 100.0
}

// recentChange is the percent change over the last few points, used to catch
// rapid movements.
func recentChange(prices []float64) float64 {
	recent := min(3, len(prices))
	oldPrice := prices[len(prices)-recent]
	currentPrice := prices[len(prices)-1]
	return ((currentPrice - oldPrice) / oldPrice) * 100.0
}

func sma(prices []float64, period int) float64 {
	start := len(prices) - period
	if start < 0 {
		start = 0
	}
	var sum float64
	for _, p := range prices[start:] {
		sum += p
	}
	return sum / float64(len(prices)-start)
}
