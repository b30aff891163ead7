package strategy

import (
	"fmt"
	"strconv"

	"btc-trade-bot-go/internal/models"
)

// Macd is a MACD crossover strategy. The MACD line is the difference between
// a fast and a slow EMA; the signal line is an EMA of the MACD line.
// BUY on the MACD line crossing above the signal line, SELL on it crossing
// below, HOLD otherwise. The very first sample only initializes the EMAs.
type Macd struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int

	fastEma    float64
	slowEma    float64
	signalEma  float64
	prevMacd   float64
	prevSignal float64
	ready      bool
}

// NewMacd creates a MACD crossover strategy with the given EMA periods.
func NewMacd(fastPeriod, slowPeriod, signalPeriod int) (*Macd, error) {
	if fastPeriod < 1 || slowPeriod < 1 || signalPeriod < 1 {
		return nil, fmt.Errorf("macd periods must be positive, got fast=%d slow=%d signal=%d",
			fastPeriod, slowPeriod, signalPeriod)
	}
	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("macd fast period (%d) must be below slow period (%d)", fastPeriod, slowPeriod)
	}
	return &Macd{
		fastPeriod:   fastPeriod,
		slowPeriod:   slowPeriod,
		signalPeriod: signalPeriod,
	}, nil
}

func (s *Macd) Name() string {
	return "macd"
}

func (s *Macd) Analyze(price float64) models.Signal {
	if !s.ready {
		s.fastEma = price
		s.slowEma = price
		s.signalEma = 0
		s.ready = true
		return models.SignalHold
	}

	fastSmoothing := 2.0 / float64(s.fastPeriod+1)
	slowSmoothing := 2.0 / float64(s.slowPeriod+1)
	signalSmoothing := 2.0 / float64(s.signalPeriod+1)

	s.fastEma = price*fastSmoothing + s.fastEma*(1-fastSmoothing)
	s.slowEma = price*slowSmoothing + s.slowEma*(1-slowSmoothing)

	macdLine := s.fastEma - s.slowEma

	// The signal EMA is seeded with the first MACD value.
	if s.signalEma == 0 {
		s.signalEma = macdLine
	} else {
		s.signalEma = macdLine*signalSmoothing + s.signalEma*(1-signalSmoothing)
	}

	signal := s.detectCrossover(macdLine, s.signalEma)

	s.prevMacd = macdLine
	s.prevSignal = s.signalEma

	return signal
}

func (s *Macd) detectCrossover(macdLine, signalLine float64) models.Signal {
	if s.prevMacd <= s.prevSignal && macdLine > signalLine {
		return models.SignalBuy
	}
	if s.prevMacd >= s.prevSignal && macdLine < signalLine {
		return models.SignalSell
	}
	return models.SignalHold
}

func (s *Macd) Parameters() map[string]string {
	return map[string]string{
		"fast_period":   strconv.Itoa(s.fastPeriod),
		"slow_period":   strconv.Itoa(s.slowPeriod),
		"signal_period": strconv.Itoa(s.signalPeriod),
	}
}
