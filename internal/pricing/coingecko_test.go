package pricing

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// newTestClient points a client at a test server with the rate limiter
// effectively disabled.
func newTestClient(serverURL string) *CoinGeckoClient {
	return &CoinGeckoClient{
		client:   resty.New().SetBaseURL(serverURL),
		coinID:   "bitcoin",
		currency: "usd",
		logger:   zap.NewNop(),
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
}

func TestCoinGeckoClient_CurrentPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":65432.1}}`)
	}))
	defer server.Close()

	price, err := newTestClient(server.URL).CurrentPrice()

	assert.NoError(t, err)
	assert.Equal(t, 65432.1, price.Value)
	assert.WithinDuration(t, time.Now(), price.Timestamp, 5*time.Second)
}

func TestCoinGeckoClient_CurrentPriceMissingQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ethereum":{"usd":3000}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CurrentPrice()
	assert.ErrorContains(t, err, "no quote for coin")
}

func TestCoinGeckoClient_HistoricalPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		assert.Equal(t, "daily", r.URL.Query().Get("interval"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"prices":[[1700000000000,60000.5],[1700086400000,61000.25],[1700172800000]]}`)
	}))
	defer server.Close()

	prices, err := newTestClient(server.URL).HistoricalPrices(7)

	assert.NoError(t, err)
	// The truncated last entry is skipped.
	assert.Len(t, prices, 2)
	assert.Equal(t, 60000.5, prices[0].Value)
	assert.Equal(t, time.UnixMilli(1700000000000), prices[0].Timestamp)
	assert.Equal(t, 61000.25, prices[1].Value)
}

func TestCoinGeckoClient_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":50000}}`)
	}))
	defer server.Close()

	price, err := newTestClient(server.URL).CurrentPrice()

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 50000.0, price.Value)
}

func TestCoinGeckoClient_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CurrentPrice()

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}
