package events

import (
	"sync"

	"btc-trade-bot-go/internal/models"
	"go.uber.org/zap"
)

// Publisher broadcasts executed trades to zero or more subscribers.
// Publish is fire-and-forget: a slow or gone subscriber never blocks the
// decision cycle that produced the trade.
type Publisher struct {
	mu          sync.RWMutex
	subscribers map[chan models.Trade]struct{}
	bufferSize  int
	logger      *zap.Logger
}

// NewPublisher creates a trade event publisher. bufferSize is the channel
// capacity handed to each subscriber.
func NewPublisher(bufferSize int, logger *zap.Logger) *Publisher {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Publisher{
		subscribers: make(map[chan models.Trade]struct{}),
		bufferSize:  bufferSize,
		logger:      logger,
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (p *Publisher) Subscribe() chan models.Trade {
	ch := make(chan models.Trade, p.bufferSize)

	p.mu.Lock()
	p.subscribers[ch] = struct{}{}
	count := len(p.subscribers)
	p.mu.Unlock()

	p.logger.Info("Trade event subscriber registered", zap.Int("subscribers", count))
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (p *Publisher) Unsubscribe(ch chan models.Trade) {
	p.mu.Lock()
	_, ok := p.subscribers[ch]
	if ok {
		delete(p.subscribers, ch)
		close(ch)
	}
	count := len(p.subscribers)
	p.mu.Unlock()

	if ok {
		p.logger.Info("Trade event subscriber removed", zap.Int("subscribers", count))
	}
}

// Publish delivers the trade to every subscriber without blocking. Trades to
// subscribers with a full buffer are dropped with a warning.
func (p *Publisher) Publish(trade models.Trade) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for ch := range p.subscribers {
		select {
		case ch <- trade:
		default:
			p.logger.Warn("Dropping trade event for slow subscriber",
				zap.String("type", string(trade.Type)),
				zap.Float64("price", trade.Price))
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (p *Publisher) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers)
}
