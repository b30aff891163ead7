package repository

import (
	"testing"
	"time"

	"btc-trade-bot-go/internal/models"
	"github.com/stretchr/testify/assert"
)

func setupTestRepository(t *testing.T) *GormTradeRepository {
	db, err := NewDatabase("file::memory:")
	assert.NoError(t, err)
	return NewGormTradeRepository(db)
}

func TestGormTradeRepository_SaveAssignsID(t *testing.T) {
	repo := setupTestRepository(t)

	saved, err := repo.Save(models.Trade{
		Timestamp: time.Now(),
		Type:      models.SignalBuy,
		Price:     50000,
		Quantity:  0.02,
		Strategy:  "sma",
		Reason:    "strategy signal",
	})

	assert.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, models.SignalBuy, saved.Type)
}

func TestGormTradeRepository_FindAllNewestFirst(t *testing.T) {
	repo := setupTestRepository(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := repo.Save(models.Trade{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Type:      models.SignalBuy,
			Price:     float64(100 + i),
			Quantity:  1,
			Strategy:  "sma",
		})
		assert.NoError(t, err)
	}

	trades, err := repo.FindAll()
	assert.NoError(t, err)
	assert.Len(t, trades, 3)
	assert.Equal(t, 102.0, trades[0].Price)
	assert.Equal(t, 100.0, trades[2].Price)
}

func TestGormTradeRepository_FindBetween(t *testing.T) {
	repo := setupTestRepository(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for day := 0; day < 5; day++ {
		_, err := repo.Save(models.Trade{
			Timestamp: base.AddDate(0, 0, day),
			Type:      models.SignalSell,
			Price:     float64(200 + day),
			Quantity:  1,
			Strategy:  "macd",
		})
		assert.NoError(t, err)
	}

	trades, err := repo.FindBetween(base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	assert.NoError(t, err)
	assert.Len(t, trades, 3)
	// Newest first within the range.
	assert.Equal(t, 203.0, trades[0].Price)
	assert.Equal(t, 201.0, trades[2].Price)
}

func TestGormTradeRepository_FindAllEmpty(t *testing.T) {
	repo := setupTestRepository(t)

	trades, err := repo.FindAll()
	assert.NoError(t, err)
	assert.Empty(t, trades)
}

func TestGormTradeRepository_PersistsProfitLossPct(t *testing.T) {
	repo := setupTestRepository(t)

	pnl := 12.5
	saved, err := repo.Save(models.Trade{
		Timestamp:     time.Now(),
		Type:          models.SignalSell,
		Price:         56250,
		Quantity:      0.02,
		ProfitLossPct: &pnl,
		Strategy:      "ema-rsi",
	})
	assert.NoError(t, err)

	trades, err := repo.FindAll()
	assert.NoError(t, err)
	assert.Len(t, trades, 1)
	assert.NotNil(t, trades[0].ProfitLossPct)
	assert.Equal(t, 12.5, *trades[0].ProfitLossPct)
	assert.Equal(t, saved.ID, trades[0].ID)
}
