package scheduler

import (
	"fmt"
	"sync"
	"time"

	"btc-trade-bot-go/internal/bot"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler drives the engine's decision ticks and the coarse daily market
// cycle refresh. The tick entry can be replaced at runtime when the poll
// interval is updated.
type Scheduler struct {
	cron   *cron.Cron
	engine *bot.Engine
	logger *zap.Logger

	mu        sync.Mutex
	tickEntry cron.EntryID
}

// NewScheduler creates a scheduler for the given engine.
func NewScheduler(engine *bot.Engine, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		engine: engine,
		logger: logger,
	}
}

// Start registers the tick and cycle-refresh entries and starts the cron
// loop. The cycle is refreshed once immediately so the engine does not trade
// against an unclassified regime until the first scheduled refresh.
func (s *Scheduler) Start(tickInterval time.Duration, cycleRefreshSpec string) error {
	if tickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", tickInterval)
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", tickInterval), s.tick)
	if err != nil {
		return fmt.Errorf("register tick task: %w", err)
	}
	s.tickEntry = id

	if _, err := s.cron.AddFunc(cycleRefreshSpec, s.engine.RefreshCycle); err != nil {
		return fmt.Errorf("register cycle refresh task: %w", err)
	}

	s.engine.RefreshCycle()

	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.Duration("tick_interval", tickInterval),
		zap.String("cycle_refresh", cycleRefreshSpec))
	return nil
}

// UpdateTickInterval replaces the tick entry with a new interval.
func (s *Scheduler) UpdateTickInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.tick)
	if err != nil {
		return fmt.Errorf("reschedule tick task: %w", err)
	}
	s.cron.Remove(s.tickEntry)
	s.tickEntry = id

	s.logger.Info("Tick interval updated", zap.Duration("interval", interval))
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) tick() {
	if err := s.engine.Tick(); err != nil {
		s.logger.Error("Tick failed", zap.Error(err))
	}
}
