package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"oddsengine/internal/models"
)

// StreamPublisher writes generated signals to Redis Streams so downstream
// services (alerting, execution) can consume them independently of the
// in-process fan-out.
type StreamPublisher struct {
	client *redis.Client
	logger *zap.Logger
	stream string
	maxLen int64
}

func NewStreamPublisher(client *redis.Client, logger *zap.Logger, stream string, maxLen int64) *StreamPublisher {
	if stream == "" {
		stream = "signals.generated"
	}
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &StreamPublisher{client: client, logger: logger, stream: stream, maxLen: maxLen}
}

// PublishSignal writes one signal to both its type-specific stream and the
// global signals stream.
func (p *StreamPublisher) PublishSignal(ctx context.Context, sig models.TradingSignal) error {
	if p == nil || p.client == nil {
		return nil
	}
	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}

	streams := []string{
		fmt.Sprintf("%s.%s", p.stream, sig.SignalType),
		p.stream,
	}
	for _, stream := range streams {
		_, err := p.client.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			MaxLen: p.maxLen,
			Approx: true,
			Values: map[string]interface{}{
				"signal": string(payload),
			},
		}).Result()
		if err != nil {
			return fmt.Errorf("publish to stream %s: %w", stream, err)
		}
	}
	return nil
}

// PublishSignals writes a batch, logging and continuing past individual
// failures so one bad write does not starve the rest of the batch.
func (p *StreamPublisher) PublishSignals(ctx context.Context, signals []models.TradingSignal) {
	if p == nil || p.client == nil {
		return
	}
	for _, sig := range signals {
		if err := p.PublishSignal(ctx, sig); err != nil && p.logger != nil {
			p.logger.Warn("signal publish failed",
				zap.String("signal_type", sig.SignalType),
				zap.String("market_id", sig.MarketID),
				zap.Error(err),
			)
		}
	}
}
