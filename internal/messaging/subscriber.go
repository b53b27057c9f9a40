package messaging

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/openmarket/marketplace-api/internal/adapter"
	"github.com/openmarket/marketplace-api/internal/domain"
	"github.com/openmarket/marketplace-api/internal/logger"
)

type subscriber struct {
	cfg     Config
	nc      adapter.NatsConn
	js      adapter.JetStream
	json    adapter.JSON
	consume adapter.ConsumeContext
}

// NewSubscriber creates a new NATS JetStream sale subscriber
func NewSubscriber(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (Subscriber, error) {
	nc, js, err := connect(cfg, natsJS)
	if err != nil {
		return nil, err
	}

	return &subscriber{
		cfg:  cfg,
		nc:   nc,
		js:   js,
		json: jsonAdapter,
	}, nil
}

// Start creates the durable consumer and begins delivering events to handler
func (s *subscriber) Start(ctx context.Context, handler SaleHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.cfg.StreamName, jetstream.ConsumerConfig{
		Durable:       s.cfg.ConsumerName,
		FilterSubject: s.cfg.SaleSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       s.cfg.AckWait,
		MaxDeliver:    s.cfg.MaxDeliver,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	consume, err := consumer.Consume(func(msg adapter.Message) {
		s.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.consume = consume
	logger.Info("Sale subscriber started",
		zap.String("stream", s.cfg.StreamName),
		zap.String("subject", s.cfg.SaleSubject),
		zap.String("consumer", s.cfg.ConsumerName),
	)
	return nil
}

// handleMessage decodes one sale message and routes it to handler. Malformed
// messages are terminated so the stream does not redeliver them forever;
// handler errors are Nak'd for redelivery up to MaxDeliver.
func (s *subscriber) handleMessage(ctx context.Context, msg adapter.Message, handler SaleHandler) {
	var event domain.SaleEvent
	if err := s.json.Unmarshal(msg.Data(), &event); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to decode sale event: %w", err))
		if err := msg.Term(); err != nil {
			logger.WarnCtx(ctx, "failed to terminate message", zap.Error(err))
		}
		return
	}

	event.Normalize()
	if !event.Valid() {
		logger.WarnCtx(ctx, "dropping invalid sale event", zap.Any("event", event))
		if err := msg.Term(); err != nil {
			logger.WarnCtx(ctx, "failed to terminate message", zap.Error(err))
		}
		return
	}

	if err := handler(ctx, &event); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to handle sale event: %w", err),
			zap.String("contract", event.ContractAddress),
			zap.String("token_id", event.TokenID),
		)
		if err := msg.Nak(); err != nil {
			logger.WarnCtx(ctx, "failed to nak message", zap.Error(err))
		}
		return
	}

	if err := msg.Ack(); err != nil {
		logger.WarnCtx(ctx, "failed to ack message", zap.Error(err))
	}
}

// Close stops consumption and closes the connection
func (s *subscriber) Close() {
	if s.consume != nil {
		s.consume.Drain()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
