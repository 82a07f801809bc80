package mq

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAckDeadline is how long a pulled message stays leased before it is
// redelivered.
const DefaultAckDeadline = 10 * time.Minute

// MemoryBroker implements Broker in memory for testing and local development
type MemoryBroker struct {
	mu          sync.Mutex
	topics      map[string]*memoryTopic
	ackDeadline time.Duration
}

type memoryTopic struct {
	subs map[string]*memorySubscription
}

type memorySubscription struct {
	pending [][]byte
	leased  map[AckID]leasedMessage
	// signal is closed and replaced whenever the subscription changes
	signal chan struct{}
}

type leasedMessage struct {
	data     []byte
	deadline time.Time
}

// MemoryBrokerOption is a functional option for configuring a MemoryBroker
type MemoryBrokerOption func(*MemoryBroker)

// WithMemoryAckDeadline sets how long pulled messages stay leased
func WithMemoryAckDeadline(d time.Duration) MemoryBrokerOption {
	return func(b *MemoryBroker) {
		if d > 0 {
			b.ackDeadline = d
		}
	}
}

// NewMemoryBroker creates a new in-memory broker
func NewMemoryBroker(opts ...MemoryBrokerOption) *MemoryBroker {
	b := &MemoryBroker{
		topics:      make(map[string]*memoryTopic),
		ackDeadline: DefaultAckDeadline,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateTopic implements Broker
func (b *MemoryBroker) CreateTopic(ctx context.Context, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.topics[topic]; !ok {
		b.topics[topic] = &memoryTopic{subs: make(map[string]*memorySubscription)}
	}
	return nil
}

// DeleteTopic implements Broker. Subscriptions of the topic go with it.
func (b *MemoryBroker) DeleteTopic(ctx context.Context, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[topic]
	if !ok {
		return nil
	}
	for _, sub := range t.subs {
		sub.notify()
	}
	delete(b.topics, topic)
	return nil
}

// CreateSubscription implements Broker
func (b *MemoryBroker) CreateSubscription(ctx context.Context, topic, subscription string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[topic]
	if !ok {
		return ErrTopicNotFound
	}
	if _, ok := t.subs[subscription]; !ok {
		t.subs[subscription] = &memorySubscription{
			leased: make(map[AckID]leasedMessage),
			signal: make(chan struct{}),
		}
	}
	return nil
}

// DeleteSubscription implements Broker
func (b *MemoryBroker) DeleteSubscription(ctx context.Context, topic, subscription string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[topic]
	if !ok {
		return nil
	}
	if sub, ok := t.subs[subscription]; ok {
		sub.notify()
		delete(t.subs, subscription)
	}
	return nil
}

// Publish implements Broker
func (b *MemoryBroker) Publish(ctx context.Context, topic string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[topic]
	if !ok {
		return ErrTopicNotFound
	}
	for _, sub := range t.subs {
		sub.pending = append(sub.pending, slices.Clone(data))
		sub.notify()
	}
	return nil
}

// Pull implements Broker
func (b *MemoryBroker) Pull(ctx context.Context, topic, subscription string, timeout time.Duration) (*Message, error) {
	deadline := time.Now().Add(timeout)

	for {
		b.mu.Lock()
		sub, err := b.subscription(topic, subscription)
		if err != nil {
			b.mu.Unlock()
			return nil, err
		}

		now := time.Now()
		nextExpiry := sub.requeueExpired(now)
		if len(sub.pending) > 0 {
			data := sub.pending[0]
			sub.pending = sub.pending[1:]
			id := AckID(uuid.NewString())
			sub.leased[id] = leasedMessage{data: data, deadline: now.Add(b.ackDeadline)}
			b.mu.Unlock()
			return &Message{AckID: id, Data: slices.Clone(data)}, nil
		}

		wait := deadline.Sub(now)
		if wait <= 0 {
			b.mu.Unlock()
			return nil, ErrPullTimeout
		}
		if !nextExpiry.IsZero() && nextExpiry.Sub(now) < wait {
			wait = nextExpiry.Sub(now)
		}
		signal := sub.signal
		b.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-signal:
		case <-timer.C:
		}
		timer.Stop()
	}
}

// Acknowledge implements Broker
func (b *MemoryBroker) Acknowledge(ctx context.Context, topic, subscription string, id AckID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, err := b.subscription(topic, subscription)
	if err != nil {
		return err
	}
	delete(sub.leased, id)
	return nil
}

func (b *MemoryBroker) subscription(topic, subscription string) (*memorySubscription, error) {
	t, ok := b.topics[topic]
	if !ok {
		return nil, ErrTopicNotFound
	}
	sub, ok := t.subs[subscription]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

// requeueExpired moves leases past their deadline back to the front of the
// pending list and returns the earliest remaining lease deadline.
func (s *memorySubscription) requeueExpired(now time.Time) time.Time {
	var expired []leasedMessage
	var next time.Time
	for id, m := range s.leased {
		if !m.deadline.After(now) {
			expired = append(expired, m)
			delete(s.leased, id)
			continue
		}
		if next.IsZero() || m.deadline.Before(next) {
			next = m.deadline
		}
	}
	if len(expired) == 0 {
		return next
	}
	slices.SortFunc(expired, func(a, b leasedMessage) int {
		return a.deadline.Compare(b.deadline)
	})
	requeued := make([][]byte, 0, len(expired)+len(s.pending))
	for _, m := range expired {
		requeued = append(requeued, m.data)
	}
	s.pending = append(requeued, s.pending...)
	return next
}

func (s *memorySubscription) notify() {
	close(s.signal)
	s.signal = make(chan struct{})
}
