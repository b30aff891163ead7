package strategy

import (
	"fmt"
	"strconv"

	"btc-trade-bot-go/internal/models"
)

// EmaRsi combines an exponential moving average (trend) with the relative
// strength index (momentum).
// BUY when the price is above the EMA while the RSI signals oversold,
// SELL when the price is below the EMA while the RSI signals overbought.
type EmaRsi struct {
	emaPeriod  int
	rsiPeriod  int
	oversold   float64
	overbought float64
	smoothing  float64

	history []float64
	ema     float64
	hasEma  bool
}

// NewEmaRsi creates an EMA+RSI strategy with the given periods and RSI bands.
func NewEmaRsi(emaPeriod, rsiPeriod int, oversold, overbought float64) (*EmaRsi, error) {
	if emaPeriod < 2 {
		return nil, fmt.Errorf("ema period must be at least 2, got %d", emaPeriod)
	}
	if rsiPeriod < 1 {
		return nil, fmt.Errorf("rsi period must be at least 1, got %d", rsiPeriod)
	}
	if oversold >= overbought {
		return nil, fmt.Errorf("rsi oversold (%v) must be below overbought (%v)", oversold, overbought)
	}
	return &EmaRsi{
		emaPeriod:  emaPeriod,
		rsiPeriod:  rsiPeriod,
		oversold:   oversold,
		overbought: overbought,
		smoothing:  2.0 / float64(emaPeriod+1),
	}, nil
}

func (s *EmaRsi) Name() string {
	return "ema-rsi"
}

func (s *EmaRsi) Analyze(price float64) models.Signal {
	s.history = append(s.history, price)

	// The window only needs to cover the longer of the two indicators.
	maxPeriod := s.emaPeriod
	if s.rsiPeriod+1 > maxPeriod {
		maxPeriod = s.rsiPeriod + 1
	}
	for len(s.history) > maxPeriod+1 {
		s.history = s.history[1:]
	}

	if len(s.history) < maxPeriod {
		return models.SignalHold
	}

	if !s.hasEma {
		// Seed the EMA with the simple average of the first emaPeriod samples.
		var sum float64
		for _, p := range s.history[:s.emaPeriod] {
			sum += p
		}
		s.ema = sum / float64(s.emaPeriod)
		s.hasEma = true
	} else {
		s.ema = price*s.smoothing + s.ema*(1-s.smoothing)
	}

	rsi := s.rsi()

	if price > s.ema && rsi < s.oversold {
		return models.SignalBuy
	}
	if price < s.ema && rsi > s.overbought {
		return models.SignalSell
	}
	return models.SignalHold
}

// rsi computes the relative strength index over the last rsiPeriod deltas.
// Returns 50 (neutral) when there is not enough data or the window is flat,
// and 100 when the window contains gains but no losses.
func (s *EmaRsi) rsi() float64 {
	if len(s.history) < s.rsiPeriod+1 {
		return 50.0
	}

	var avgGain, avgLoss float64
	for i := len(s.history) - s.rsiPeriod - 1; i < len(s.history)-1; i++ {
		change := s.history[i+1] - s.history[i]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(s.rsiPeriod)
	avgLoss /= float64(s.rsiPeriod)

	if avgLoss == 0 {
		if avgGain == 0 {
			// Flat window: no direction either way.
			return 50.0
		}
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

func (s *EmaRsi) Parameters() map[string]string {
	return map[string]string{
		"ema_period":     strconv.Itoa(s.emaPeriod),
		"rsi_period":     strconv.Itoa(s.rsiPeriod),
		"rsi_oversold":   strconv.FormatFloat(s.oversold, 'f', -1, 64),
		"rsi_overbought": strconv.FormatFloat(s.overbought, 'f', -1, 64),
	}
}

// Ema exposes the current EMA value for tests and diagnostics.
func (s *EmaRsi) Ema() (float64, bool) {
	return s.ema, s.hasEma
}
