package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kcidb/kcidb-go/pkg/logger"
	"github.com/kcidb/kcidb-go/pkg/report"
)

// DefaultPullTimeout bounds a single broker poll. Infinite polls are not
// supported by every broker, so Pull keeps polling in rounds.
const DefaultPullTimeout = 5 * time.Minute

// Subscriber pulls reports from a subscription to a topic
type Subscriber struct {
	broker       Broker
	topic        string
	subscription string
	pullTimeout  time.Duration
	logger       *slog.Logger
}

// NewSubscriber creates a new Subscriber
func NewSubscriber(broker Broker, topic, subscription string, opts ...SubscriberOption) (*Subscriber, error) {
	if broker == nil {
		return nil, ErrBrokerNil
	}
	if topic == "" {
		return nil, ErrTopicEmpty
	}
	if subscription == "" {
		return nil, ErrSubscriptionEmpty
	}

	s := &Subscriber{
		broker:       broker,
		topic:        topic,
		subscription: subscription,
		pullTimeout:  DefaultPullTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init creates the subscription
func (s *Subscriber) Init(ctx context.Context) error {
	if err := s.broker.CreateSubscription(ctx, s.topic, s.subscription); err != nil {
		return fmt.Errorf("failed to create subscription %q to topic %q: %w", s.subscription, s.topic, err)
	}
	return nil
}

// Cleanup deletes the subscription
func (s *Subscriber) Cleanup(ctx context.Context) error {
	if err := s.broker.DeleteSubscription(ctx, s.topic, s.subscription); err != nil {
		return fmt.Errorf("failed to delete subscription %q: %w", s.subscription, err)
	}
	return nil
}

// Pull blocks until a report is available and returns it upgraded to the
// latest schema version, along with the ID to acknowledge it with.
// Per-attempt broker timeouts are retried; only ctx ends the wait.
// A message that fails to decode is returned with its AckID and the error,
// so the caller can drop it.
func (s *Subscriber) Pull(ctx context.Context) (AckID, report.Data, error) {
	var msg *Message
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}

		m, err := s.broker.Pull(ctx, s.topic, s.subscription, s.pullTimeout)
		if errors.Is(err, ErrPullTimeout) || (err == nil && m == nil) {
			s.logger.DebugContext(ctx, "pull timed out, retrying",
				logger.Subscription(s.subscription),
				logger.RetryCount(attempt))
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", nil, ctxErr
			}
			return "", nil, fmt.Errorf("failed to pull from subscription %q: %w", s.subscription, err)
		}
		msg = m
		break
	}

	data, err := Decode(msg.Data)
	if err != nil {
		return msg.AckID, nil, fmt.Errorf("failed to decode message %s: %w", msg.AckID, err)
	}
	return msg.AckID, data, nil
}

// Ack acknowledges a report returned by Pull
func (s *Subscriber) Ack(ctx context.Context, id AckID) error {
	if err := s.broker.Acknowledge(ctx, s.topic, s.subscription, id); err != nil {
		return fmt.Errorf("failed to acknowledge message %s: %w", id, err)
	}
	return nil
}
