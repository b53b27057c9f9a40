// Package messaging moves marketplace sale events over NATS JetStream.
package messaging

import (
	"context"
	"time"

	"github.com/openmarket/marketplace-api/internal/domain"
)

// SaleHandler is called for each sale event received from the stream
type SaleHandler func(ctx context.Context, event *domain.SaleEvent) error

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	SaleSubject    string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWait        time.Duration
	MaxDeliver     int
}

// Publisher publishes sale events
//
//go:generate mockgen -source=messaging.go -destination=../mocks/messaging.go -package=mocks -mock_names=Publisher=MockPublisher,Subscriber=MockSubscriber
type Publisher interface {
	// PublishSale publishes a sale event to the sale subject
	PublishSale(ctx context.Context, event *domain.SaleEvent) error

	// Close closes the connection and cleans up resources
	Close()
}

// Subscriber consumes sale events from the stream
type Subscriber interface {
	// Start creates the durable consumer and begins delivering events to
	// handler. It returns once consumption is running.
	Start(ctx context.Context, handler SaleHandler) error

	// Close stops consumption and closes the connection
	Close()
}
