package jetstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ugc/internal/adapter"
	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/logger"
	"github.com/feral-file/ff-ugc/internal/messaging"
)

const defaultConsumerInactiveThreshold = 5 * time.Minute

type subscriber struct {
	nc     adapter.NatsConn
	js     adapter.JetStream
	config Config
}

// NewSubscriber connects to NATS for consuming ugc events
func NewSubscriber(cfg Config, natsJS adapter.NatsJetStream) (messaging.Subscriber, error) {
	if cfg.ConsumerName == "" {
		return nil, fmt.Errorf("consumer name is required")
	}

	nc, js, err := natsJS.Connect(cfg.URL, cfg.connectionOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &subscriber{
		nc:     nc,
		js:     js,
		config: cfg,
	}, nil
}

// Subscribe consumes events published from now on until ctx is cancelled.
// Unparseable messages are terminated, handler errors are logged and acknowledged.
func (s *subscriber) Subscribe(ctx context.Context, handler messaging.EventHandler) error {
	inactiveThreshold := s.config.ConsumerInactiveThreshold
	if inactiveThreshold == 0 {
		inactiveThreshold = defaultConsumerInactiveThreshold
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.config.StreamName, jetstream.ConsumerConfig{
		Name:              s.config.ConsumerName,
		DeliverPolicy:     jetstream.DeliverNewPolicy,
		AckPolicy:         jetstream.AckExplicitPolicy,
		FilterSubject:     s.config.wildcard(),
		InactiveThreshold: inactiveThreshold,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	sub, err := consumer.Consume(func(msg adapter.Message) {
		s.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.InfoCtx(ctx, "Started consuming ugc events",
		zap.String("stream", s.config.StreamName),
		zap.String("consumer", s.config.ConsumerName))

	<-ctx.Done()
	return ctx.Err()
}

// handleMessage processes a single NATS message
func (s *subscriber) handleMessage(ctx context.Context, msg adapter.Message, handler messaging.EventHandler) {
	var event domain.Event
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to unmarshal event"), zap.String("subject", msg.Subject()))
		if err := msg.Term(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to terminate message"))
		}
		return
	}

	if err := handler(ctx, &event); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("message", "Failed to handle event"),
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
	}

	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to ack message"))
	}
}

// Close closes the NATS connection
func (s *subscriber) Close() {
	if s.nc == nil {
		return
	}

	s.nc.Close()
}
