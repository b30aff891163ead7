package bot

// Portfolio holds the cash balance and asset holdings of one engine instance.
// Trading is all-in/all-out: at most one of balance and holdings is ever
// positive. Pure state, no I/O; every precondition violation degrades to a
// no-op instead of an error.
type Portfolio struct {
	balance    float64
	holdings   float64
	entryPrice float64
	peakPrice  float64
}

// NewPortfolio creates a portfolio holding only cash.
func NewPortfolio(initialBalance float64) *Portfolio {
	return &Portfolio{balance: initialBalance}
}

// Buy converts the whole cash balance into holdings at the given price and
// starts entry/peak bookkeeping. No-op without cash.
func (p *Portfolio) Buy(price float64) {
	if p.balance <= 0 {
		return
	}
	p.holdings = p.balance / price
	p.balance = 0
	p.entryPrice = price
	p.peakPrice = price
}

// Sell converts all holdings back into cash at the given price and clears the
// entry/peak bookkeeping. No-op without holdings.
func (p *Portfolio) Sell(price float64) {
	if p.holdings <= 0 {
		return
	}
	p.balance = p.holdings * price
	p.holdings = 0
	p.entryPrice = 0
	p.peakPrice = 0
}

// UpdatePeak raises the peak price seen since entry. Called once per tick
// before any risk check.
func (p *Portfolio) UpdatePeak(price float64) {
	if p.holdings > 0 && price > p.peakPrice {
		p.peakPrice = price
	}
}

// TotalValue returns cash plus holdings valued at the given price.
func (p *Portfolio) TotalValue(price float64) float64 {
	return p.balance + p.holdings*price
}

// CurrentPnlPct returns the unrealized profit percentage relative to the
// entry price, or 0 when not holding.
func (p *Portfolio) CurrentPnlPct(price float64) float64 {
	if p.holdings <= 0 || p.entryPrice <= 0 {
		return 0
	}
	return ((price - p.entryPrice) / p.entryPrice) * 100
}

// ShouldTrailingStop reports whether the price has fallen at least pct
// percent from the peak seen since entry.
func (p *Portfolio) ShouldTrailingStop(price float64, pct float64) bool {
	if p.holdings <= 0 || p.peakPrice <= 0 {
		return false
	}
	drop := ((p.peakPrice - price) / p.peakPrice) * 100
	return drop >= pct
}

// ShouldTakeProfit reports whether the unrealized profit has reached pct
// percent.
func (p *Portfolio) ShouldTakeProfit(price float64, pct float64) bool {
	if p.holdings <= 0 {
		return false
	}
	return p.CurrentPnlPct(price) >= pct
}

func (p *Portfolio) Balance() float64 {
	return p.balance
}

func (p *Portfolio) Holdings() float64 {
	return p.holdings
}

func (p *Portfolio) EntryPrice() float64 {
	return p.entryPrice
}

func (p *Portfolio) PeakPrice() float64 {
	return p.peakPrice
}

func (p *Portfolio) HasBalance() bool {
	return p.balance > 0
}

func (p *Portfolio) HasHoldings() bool {
	return p.holdings > 0
}
