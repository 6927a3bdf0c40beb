package analytics

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher is used when no brokers are configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.log.Info("cart event",
		zap.String("kind", string(event.Kind)),
		zap.String("session_id", event.SessionID),
		zap.Int64("product_id", event.ProductID),
		zap.Int("quantity", event.Quantity),
		zap.Int("item_count", event.ItemCount),
		zap.String("total", event.Total.StringFixed(2)),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
