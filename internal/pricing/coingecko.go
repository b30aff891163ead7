package pricing

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"btc-trade-bot-go/internal/config"
	"btc-trade-bot-go/internal/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CoinGeckoClient fetches prices from the CoinGecko REST API.
// It implements the Provider interface.
type CoinGeckoClient struct {
	client   *resty.Client
	coinID   string
	currency string
	logger   *zap.Logger
	limiter  *rate.Limiter
}

// ensure CoinGeckoClient implements the interface
var _ Provider = (*CoinGeckoClient)(nil)

// NewCoinGeckoClient creates a new CoinGecko API client.
func NewCoinGeckoClient(cfg *config.Price, logger *zap.Logger) *CoinGeckoClient {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// CoinGecko's free tier is aggressively rate limited; stay under it.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &CoinGeckoClient{
		client:   client,
		coinID:   cfg.CoinID,
		currency: cfg.Currency,
		logger:   logger,
		limiter:  limiter,
	}
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *CoinGeckoClient) doRequest(ctx context.Context, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(http.MethodGet, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// CurrentPrice fetches the latest spot price for the configured coin.
func (c *CoinGeckoClient) CurrentPrice() (models.Price, error) {
	var result map[string]map[string]float64

	req := c.client.R().
		SetQueryParams(map[string]string{
			"ids":           c.coinID,
			"vs_currencies": c.currency,
		}).
		SetResult(&result).
		SetHeader("Accept", "application/json")
	ctx := context.Background()

	_, err := c.doRequest(ctx, "/simple/price", req)
	if err != nil {
		return models.Price{}, fmt.Errorf("failed to get current price: %w", err)
	}

	quote, ok := result[c.coinID]
	if !ok {
		return models.Price{}, fmt.Errorf("no quote for coin %q in response", c.coinID)
	}
	value, ok := quote[c.currency]
	if !ok || value <= 0 {
		return models.Price{}, fmt.Errorf("no %s price for coin %q in response", c.currency, c.coinID)
	}

	return models.Price{Value: value, Timestamp: time.Now()}, nil
}

// marketChartResponse is the shape of CoinGecko's market_chart endpoint.
// Each price entry is a [unix_ms, value] pair.
type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// HistoricalPrices fetches up to `days` days of daily prices, oldest first.
func (c *CoinGeckoClient) HistoricalPrices(days int) ([]models.Price, error) {
	var result marketChartResponse

	req := c.client.R().
		SetQueryParams(map[string]string{
			"vs_currency": c.currency,
			"days":        strconv.Itoa(days),
			"interval":    "daily",
		}).
		SetResult(&result).
		SetHeader("Accept", "application/json")
	ctx := context.Background()

	url := fmt.Sprintf("/coins/%s/market_chart", c.coinID)
	_, err := c.doRequest(ctx, url, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get historical prices: %w", err)
	}

	prices := make([]models.Price, 0, len(result.Prices))
	for _, entry := range result.Prices {
		if len(entry) < 2 {
			continue
		}
		prices = append(prices, models.Price{
			Value:     entry[1],
			Timestamp: time.UnixMilli(int64(entry[0])),
		})
	}

	return prices, nil
}
