package strategy

import (
	"fmt"
	"strconv"

	"btc-trade-bot-go/internal/models"
)

// SimpleMovingAverage is a moving-average crossover strategy.
// BUY when the price sits above both the current and the previous average,
// SELL when it sits below both, HOLD otherwise or while warming up.
type SimpleMovingAverage struct {
	period      int
	history     []float64
	lastAverage float64
	hasAverage  bool
}

// NewSimpleMovingAverage creates an SMA crossover strategy over the given period.
func NewSimpleMovingAverage(period int) (*SimpleMovingAverage, error) {
	if period < 2 {
		return nil, fmt.Errorf("sma period must be at least 2, got %d", period)
	}
	return &SimpleMovingAverage{period: period}, nil
}

func (s *SimpleMovingAverage) Name() string {
	return "sma"
}

func (s *SimpleMovingAverage) Analyze(price float64) models.Signal {
	s.history = append(s.history, price)
	if len(s.history) > s.period {
		s.history = s.history[1:]
	}

	if len(s.history) < s.period {
		return models.SignalHold
	}

	var sum float64
	for _, p := range s.history {
		sum += p
	}
	average := sum / float64(len(s.history))

	signal := models.SignalHold
	if s.hasAverage {
		if price > average && price > s.lastAverage {
			signal = models.SignalBuy
		} else if price < average && price < s.lastAverage {
			signal = models.SignalSell
		}
	}

	s.lastAverage = average
	s.hasAverage = true
	return signal
}

func (s *SimpleMovingAverage) Parameters() map[string]string {
	return map[string]string{"period": strconv.Itoa(s.period)}
}

// DataPoints returns the number of samples currently in the window.
func (s *SimpleMovingAverage) DataPoints() int {
	return len(s.history)
}
