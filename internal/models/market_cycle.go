package models

// MarketCycle is a coarse classification of market conditions used to gate
// trading.
type MarketCycle string

const (
	CycleAccumulation MarketCycle = "ACCUMULATION"
	CycleMarkup       MarketCycle = "MARKUP"
	CycleBullMarket   MarketCycle = "BULL_MARKET"
	CycleDecline      MarketCycle = "DECLINE"
	CycleCrash        MarketCycle = "CRASH"
	CycleUnknown      MarketCycle = "UNKNOWN"
)

// ParseMarketCycle maps a configured cycle name to a MarketCycle. The second
// return value is false for names that are not a known cycle.
func ParseMarketCycle(name string) (MarketCycle, bool) {
	switch MarketCycle(name) {
	case CycleAccumulation, CycleMarkup, CycleBullMarket, CycleDecline, CycleCrash, CycleUnknown:
		return MarketCycle(name), true
	}
	return CycleUnknown, false
}
