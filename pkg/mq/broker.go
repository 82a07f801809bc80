package mq

import (
	"context"
	"time"
)

// AckID identifies a pulled message for acknowledgment. It is opaque and
// valid for a single Ack.
type AckID string

// Message is a message pulled from a subscription.
type Message struct {
	AckID AckID
	Data  []byte
}

// Broker is the transport the Publisher and Subscriber run on.
// Topic and subscription management calls are idempotent.
type Broker interface {
	CreateTopic(ctx context.Context, topic string) error
	DeleteTopic(ctx context.Context, topic string) error
	CreateSubscription(ctx context.Context, topic, subscription string) error
	DeleteSubscription(ctx context.Context, topic, subscription string) error

	// Publish appends data to the topic, fanning it out to every subscription.
	Publish(ctx context.Context, topic string, data []byte) error

	// Pull waits up to timeout for one message and returns ErrPullTimeout
	// when none arrives; it never returns a nil message with a nil error.
	// A pulled message is redelivered unless acknowledged before the
	// broker's ack deadline.
	Pull(ctx context.Context, topic, subscription string, timeout time.Duration) (*Message, error)

	// Acknowledge marks a pulled message as handled. Stale IDs are ignored.
	Acknowledge(ctx context.Context, topic, subscription string, id AckID) error
}
