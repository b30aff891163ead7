package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Price    Price    `mapstructure:"price"`
	Trading  Trading  `mapstructure:"trading"`
	Strategy Strategy `mapstructure:"strategy"`
	Cycle    Cycle    `mapstructure:"cycle"`
	Backtest Backtest `mapstructure:"backtest"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// Price holds the configuration for the price data source.
type Price struct {
	// Source selects the price provider: "coingecko" or "csv".
	Source         string  `mapstructure:"source"`
	BaseURL        string  `mapstructure:"base_url"`
	CoinID         string  `mapstructure:"coin_id"`
	Currency       string  `mapstructure:"currency"`
	CsvPath        string  `mapstructure:"csv_path"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Trading holds the configuration for the trading engine.
type Trading struct {
	InitialBalance      float64  `mapstructure:"initial_balance"`
	PollIntervalSeconds int      `mapstructure:"poll_interval_seconds"`
	MinIntervalSeconds  int      `mapstructure:"min_interval_seconds"`
	MaxIntervalSeconds  int      `mapstructure:"max_interval_seconds"`
	TrailingStopEnabled bool     `mapstructure:"trailing_stop_enabled"`
	TrailingStopPct     float64  `mapstructure:"trailing_stop_pct"`
	TakeProfitEnabled   bool     `mapstructure:"take_profit_enabled"`
	TakeProfitPct       float64  `mapstructure:"take_profit_pct"`
	AllowedCycles       []string `mapstructure:"allowed_cycles"`
	CycleRefreshCron    string   `mapstructure:"cycle_refresh_cron"`
}

// Strategy holds the parameters for all signal strategies. Which one the
// engine actually runs is selected by Type.
type Strategy struct {
	Type          string    `mapstructure:"type"`
	SmaPeriod     int       `mapstructure:"sma_period"`
	EmaPeriod     int       `mapstructure:"ema_period"`
	RsiPeriod     int       `mapstructure:"rsi_period"`
	RsiOversold   float64   `mapstructure:"rsi_oversold"`
	RsiOverbought float64   `mapstructure:"rsi_overbought"`
	MacdFast      int       `mapstructure:"macd_fast"`
	MacdSlow      int       `mapstructure:"macd_slow"`
	MacdSignal    int       `mapstructure:"macd_signal"`
	Composite     Composite `mapstructure:"composite"`
}

// Composite holds the weighted-voting configuration for the composite strategy.
type Composite struct {
	Strategies    []string  `mapstructure:"strategies"`
	Weights       []float64 `mapstructure:"weights"`
	BuyThreshold  float64   `mapstructure:"buy_threshold"`
	SellThreshold float64   `mapstructure:"sell_threshold"`
}

// Cycle holds the thresholds for market cycle classification.
type Cycle struct {
	AnalysisWindowDays int     `mapstructure:"analysis_window_days"`
	CrashThreshold     float64 `mapstructure:"crash_threshold"`
	BullThreshold      float64 `mapstructure:"bull_threshold"`
	VolatilityLow      float64 `mapstructure:"volatility_low"`
	VolatilityHigh     float64 `mapstructure:"volatility_high"`
}

// Backtest holds the default backtest parameters.
type Backtest struct {
	Days           int     `mapstructure:"days"`
	InitialBalance float64 `mapstructure:"initial_balance"`
}

// Server holds the configuration for the HTTP API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// knownStrategies are the strategy types the factory can build.
var knownStrategies = map[string]bool{
	"sma":       true,
	"ema-rsi":   true,
	"macd":      true,
	"composite": true,
}

// knownCycles are the market cycle names accepted in allowed_cycles.
var knownCycles = map[string]bool{
	"ACCUMULATION": true,
	"MARKUP":       true,
	"BULL_MARKET":  true,
	"DECLINE":      true,
	"CRASH":        true,
	"UNKNOWN":      true,
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("price.source", "coingecko")
	viper.SetDefault("price.base_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("price.coin_id", "bitcoin")
	viper.SetDefault("price.currency", "usd")
	viper.SetDefault("price.rate_limit", 0.5) // requests per second
	viper.SetDefault("price.rate_limit_burst", 2)
	viper.SetDefault("trading.min_interval_seconds", 5)
	viper.SetDefault("trading.max_interval_seconds", 3600)
	viper.SetDefault("trading.cycle_refresh_cron", "0 0 * * *")
	viper.SetDefault("strategy.composite.buy_threshold", 0.5)
	viper.SetDefault("strategy.composite.sell_threshold", -0.5)
	viper.SetDefault("backtest.days", 30)
	viper.SetDefault("backtest.initial_balance", 1000)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	err = config.Validate()
	return
}

// Validate rejects configurations the engine cannot run with. Invalid values
// are never silently replaced with defaults.
func (c *Config) Validate() error {
	if !knownStrategies[c.Strategy.Type] {
		return fmt.Errorf("unknown strategy type %q (supported: sma, ema-rsi, macd, composite)", c.Strategy.Type)
	}
	if c.Strategy.Type == "composite" {
		if len(c.Strategy.Composite.Strategies) == 0 {
			return fmt.Errorf("composite strategy requires at least one sub-strategy")
		}
		if len(c.Strategy.Composite.Strategies) != len(c.Strategy.Composite.Weights) {
			return fmt.Errorf("composite strategy count (%d) does not match weight count (%d)",
				len(c.Strategy.Composite.Strategies), len(c.Strategy.Composite.Weights))
		}
		for _, name := range c.Strategy.Composite.Strategies {
			if name == "composite" || !knownStrategies[name] {
				return fmt.Errorf("unknown sub-strategy %q in composite (supported: sma, ema-rsi, macd)", name)
			}
		}
	}
	if c.Trading.InitialBalance <= 0 {
		return fmt.Errorf("trading.initial_balance must be positive, got %v", c.Trading.InitialBalance)
	}
	if err := c.Trading.ValidateInterval(c.Trading.PollIntervalSeconds); err != nil {
		return err
	}
	for _, cycle := range c.Trading.AllowedCycles {
		if !knownCycles[cycle] {
			return fmt.Errorf("unknown market cycle %q in allowed_cycles", cycle)
		}
	}
	if c.Cycle.AnalysisWindowDays <= 0 {
		return fmt.Errorf("cycle.analysis_window_days must be positive, got %d", c.Cycle.AnalysisWindowDays)
	}
	if c.Price.Source != "coingecko" && c.Price.Source != "csv" {
		return fmt.Errorf("unknown price source %q (supported: coingecko, csv)", c.Price.Source)
	}
	if c.Price.Source == "csv" && c.Price.CsvPath == "" {
		return fmt.Errorf("price.csv_path is required when price.source is csv")
	}
	return nil
}

// ValidateInterval checks a poll interval against the configured bounds. It is
// used both at load time and when the interval is updated at runtime.
func (t *Trading) ValidateInterval(seconds int) error {
	if seconds < t.MinIntervalSeconds || seconds > t.MaxIntervalSeconds {
		return fmt.Errorf("poll interval %ds out of bounds [%ds, %ds]",
			seconds, t.MinIntervalSeconds, t.MaxIntervalSeconds)
	}
	return nil
}
