package pricing

import "btc-trade-bot-go/internal/models"

// Provider is the port through which the engine obtains prices. Both calls
// may fail per invocation; the caller decides whether a failure is fatal.
type Provider interface {
	// CurrentPrice returns the latest observed price.
	CurrentPrice() (models.Price, error)

	// HistoricalPrices returns up to `days` days of prices, oldest first.
	HistoricalPrices(days int) ([]models.Price, error)
}
