package mq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kcidb/kcidb-go/pkg/logger"
	"github.com/kcidb/kcidb-go/pkg/report"
)

// Publisher publishes reports to a topic
type Publisher struct {
	broker Broker
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a new Publisher for the topic
func NewPublisher(broker Broker, topic string, opts ...PublisherOption) (*Publisher, error) {
	if broker == nil {
		return nil, ErrBrokerNil
	}
	if topic == "" {
		return nil, ErrTopicEmpty
	}

	p := &Publisher{
		broker: broker,
		topic:  topic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Init creates the topic
func (p *Publisher) Init(ctx context.Context) error {
	if err := p.broker.CreateTopic(ctx, p.topic); err != nil {
		return fmt.Errorf("failed to create topic %q: %w", p.topic, err)
	}
	return nil
}

// Cleanup deletes the topic
func (p *Publisher) Cleanup(ctx context.Context) error {
	if err := p.broker.DeleteTopic(ctx, p.topic); err != nil {
		return fmt.Errorf("failed to delete topic %q: %w", p.topic, err)
	}
	return nil
}

// Publish encodes data and hands it to the broker. Nothing is buffered
// locally: a broker failure is returned to the caller.
func (p *Publisher) Publish(ctx context.Context, data report.Data) error {
	body, err := Encode(data)
	if err != nil {
		return err
	}

	if err := p.broker.Publish(ctx, p.topic, body); err != nil {
		return fmt.Errorf("failed to publish to topic %q: %w", p.topic, err)
	}

	p.logger.DebugContext(ctx, "report published",
		logger.Topic(p.topic),
		slog.Int("size", len(body)))

	return nil
}
