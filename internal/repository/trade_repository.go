package repository

import (
	"fmt"
	"time"

	"btc-trade-bot-go/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TradeRepository is the port through which the engine persists trades.
type TradeRepository interface {
	// Save persists a trade and returns it with its assigned ID.
	Save(trade models.Trade) (models.Trade, error)

	// FindAll returns all trades, newest first.
	FindAll() ([]models.Trade, error)

	// FindBetween returns trades whose timestamp falls in [start, end],
	// newest first.
	FindBetween(start, end time.Time) ([]models.Trade, error)
}

// GormTradeRepository stores trades in a gorm-managed database.
type GormTradeRepository struct {
	db *gorm.DB
}

var _ TradeRepository = (*GormTradeRepository)(nil)

// NewDatabase opens the database and migrates the trade schema.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Trade{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return db, nil
}

// NewGormTradeRepository creates a trade repository backed by the given database.
func NewGormTradeRepository(db *gorm.DB) *GormTradeRepository {
	return &GormTradeRepository{db: db}
}

func (r *GormTradeRepository) Save(trade models.Trade) (models.Trade, error) {
	if err := r.db.Create(&trade).Error; err != nil {
		return models.Trade{}, fmt.Errorf("failed to save trade: %w", err)
	}
	return trade, nil
}

func (r *GormTradeRepository) FindAll() ([]models.Trade, error) {
	var trades []models.Trade
	if err := r.db.Order("timestamp desc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	return trades, nil
}

func (r *GormTradeRepository) FindBetween(start, end time.Time) ([]models.Trade, error) {
	var trades []models.Trade
	err := r.db.
		Where("timestamp BETWEEN ? AND ?", start, end).
		Order("timestamp desc").
		Find(&trades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trades between %s and %s: %w", start, end, err)
	}
	return trades, nil
}
