package pricing

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"btc-trade-bot-go/internal/models"
	"go.uber.org/zap"
)

// CsvProvider reads prices from a CSV file with `timestamp,price` rows
// (unix seconds, float). It serves the whole file as history and the last
// row as the current price, which makes offline runs and backtests
// reproducible without network access.
type CsvProvider struct {
	prices []models.Price
	logger *zap.Logger
}

var _ Provider = (*CsvProvider)(nil)

// NewCsvProvider loads the price series from the given file. Rows that do not
// parse are skipped with a warning; an empty file is an error.
func NewCsvProvider(path string, logger *zap.Logger) (*CsvProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read price file %s: %w", path, err)
	}

	prices := make([]models.Price, 0, len(records))
	for i, record := range records {
		ts, errTs := strconv.ParseInt(record[0], 10, 64)
		value, errVal := strconv.ParseFloat(record[1], 64)
		if errTs != nil || errVal != nil {
			// Tolerate a header row and malformed lines.
			logger.Warn("Skipping unparseable price row",
				zap.Int("line", i+1),
				zap.Strings("fields", record))
			continue
		}
		prices = append(prices, models.Price{
			Value:     value,
			Timestamp: time.Unix(ts, 0),
		})
	}

	if len(prices) == 0 {
		return nil, fmt.Errorf("price file %s contains no usable rows", path)
	}

	logger.Info("Loaded price series from file",
		zap.String("path", path),
		zap.Int("points", len(prices)))

	return &CsvProvider{prices: prices, logger: logger}, nil
}

// CurrentPrice returns the last price in the file.
func (p *CsvProvider) CurrentPrice() (models.Price, error) {
	return p.prices[len(p.prices)-1], nil
}

// HistoricalPrices returns the last `days` points, oldest first.
func (p *CsvProvider) HistoricalPrices(days int) ([]models.Price, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}
	start := len(p.prices) - days
	if start < 0 {
		start = 0
	}
	out := make([]models.Price, len(p.prices)-start)
	copy(out, p.prices[start:])
	return out, nil
}
