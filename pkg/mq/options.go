package mq

import (
	"log/slog"
	"time"
)

// PublisherOption is a functional option for configuring a Publisher
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger for the publisher
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// SubscriberOption is a functional option for configuring a Subscriber
type SubscriberOption func(*Subscriber)

// WithPullTimeout bounds how long a single broker poll waits for a message
func WithPullTimeout(d time.Duration) SubscriberOption {
	return func(s *Subscriber) {
		if d > 0 {
			s.pullTimeout = d
		}
	}
}

// WithSubscriberLogger sets the logger for the subscriber
func WithSubscriberLogger(logger *slog.Logger) SubscriberOption {
	return func(s *Subscriber) {
		if logger != nil {
			s.logger = logger
		}
	}
}
