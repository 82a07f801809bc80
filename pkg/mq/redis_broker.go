package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kcidb/kcidb-go/pkg/logger"
)

const (
	redisDataField = "data"
	// redisInitGroup is a throwaway consumer group used to create an empty stream.
	redisInitGroup = "__init__"
)

// RedisBroker implements Broker on top of Redis Streams (Redis 6.2+).
//
// A topic is a stream and a subscription is a consumer group on it. Pull
// first reclaims entries another consumer left pending for longer than the
// ack deadline (XAUTOCLAIM), then blocks for new entries (XREADGROUP).
type RedisBroker struct {
	client      redis.UniversalClient
	consumer    string
	keyPrefix   string
	ackDeadline time.Duration
	logger      *slog.Logger
}

// RedisBrokerOption is a functional option for configuring a RedisBroker
type RedisBrokerOption func(*RedisBroker)

// WithRedisAckDeadline sets the idle time after which pending entries are redelivered
func WithRedisAckDeadline(d time.Duration) RedisBrokerOption {
	return func(b *RedisBroker) {
		if d > 0 {
			b.ackDeadline = d
		}
	}
}

// WithRedisKeyPrefix namespaces stream keys
func WithRedisKeyPrefix(prefix string) RedisBrokerOption {
	return func(b *RedisBroker) {
		b.keyPrefix = prefix
	}
}

// WithRedisConsumer overrides the consumer name used inside consumer groups
func WithRedisConsumer(name string) RedisBrokerOption {
	return func(b *RedisBroker) {
		if name != "" {
			b.consumer = name
		}
	}
}

// WithRedisLogger sets the logger for the broker
func WithRedisLogger(logger *slog.Logger) RedisBrokerOption {
	return func(b *RedisBroker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewRedisBroker creates a broker backed by Redis Streams
func NewRedisBroker(client redis.UniversalClient, opts ...RedisBrokerOption) *RedisBroker {
	hostname, _ := os.Hostname()
	b := &RedisBroker{
		client:      client,
		consumer:    hostname + "-" + uuid.NewString(),
		keyPrefix:   "kcidb:mq:",
		ackDeadline: DefaultAckDeadline,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBroker) key(topic string) string {
	return b.keyPrefix + topic
}

// CreateTopic implements Broker
func (b *RedisBroker) CreateTopic(ctx context.Context, topic string) error {
	key := b.key(topic)
	if err := b.client.XGroupCreateMkStream(ctx, key, redisInitGroup, "$").Err(); err != nil && !isBusyGroup(err) {
		return err
	}
	return b.client.XGroupDestroy(ctx, key, redisInitGroup).Err()
}

// DeleteTopic implements Broker
func (b *RedisBroker) DeleteTopic(ctx context.Context, topic string) error {
	return b.client.Del(ctx, b.key(topic)).Err()
}

// CreateSubscription implements Broker. The subscription receives messages
// published after its creation.
func (b *RedisBroker) CreateSubscription(ctx context.Context, topic, subscription string) error {
	key := b.key(topic)
	exists, err := b.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrTopicNotFound
	}
	if err := b.client.XGroupCreate(ctx, key, subscription, "$").Err(); err != nil && !isBusyGroup(err) {
		return err
	}
	return nil
}

// DeleteSubscription implements Broker
func (b *RedisBroker) DeleteSubscription(ctx context.Context, topic, subscription string) error {
	key := b.key(topic)
	exists, err := b.client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return err
	}
	return b.client.XGroupDestroy(ctx, key, subscription).Err()
}

// Publish implements Broker
func (b *RedisBroker) Publish(ctx context.Context, topic string, data []byte) error {
	err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream:     b.key(topic),
		NoMkStream: true,
		Values:     map[string]any{redisDataField: data},
	}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrTopicNotFound
	}
	return err
}

// Pull implements Broker
func (b *RedisBroker) Pull(ctx context.Context, topic, subscription string, timeout time.Duration) (*Message, error) {
	key := b.key(topic)

	claimed, _, err := b.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   key,
		Group:    subscription,
		Consumer: b.consumer,
		MinIdle:  b.ackDeadline,
		Start:    "0-0",
		Count:    1,
	}).Result()
	if err != nil {
		return nil, b.mapError(err)
	}
	if msg, ok := b.message(ctx, key, subscription, claimed); ok {
		b.logger.DebugContext(ctx, "redelivering expired message",
			logger.Subscription(subscription),
			logger.AckID(string(msg.AckID)))
		return msg, nil
	}

	streams, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    subscription,
		Consumer: b.consumer,
		Streams:  []string{key, ">"},
		Count:    1,
		Block:    timeout,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPullTimeout
	}
	if err != nil {
		return nil, b.mapError(err)
	}
	for _, s := range streams {
		if msg, ok := b.message(ctx, key, subscription, s.Messages); ok {
			return msg, nil
		}
	}
	return nil, ErrPullTimeout
}

// Acknowledge implements Broker
func (b *RedisBroker) Acknowledge(ctx context.Context, topic, subscription string, id AckID) error {
	if err := b.client.XAck(ctx, b.key(topic), subscription, string(id)).Err(); err != nil {
		return b.mapError(err)
	}
	return nil
}

// message picks the first usable entry. Entries trimmed from the stream
// while pending come back without values and are acknowledged away.
func (b *RedisBroker) message(ctx context.Context, key, subscription string, msgs []redis.XMessage) (*Message, bool) {
	for _, m := range msgs {
		switch v := m.Values[redisDataField].(type) {
		case string:
			return &Message{AckID: AckID(m.ID), Data: []byte(v)}, true
		case []byte:
			return &Message{AckID: AckID(m.ID), Data: v}, true
		default:
			if err := b.client.XAck(ctx, key, subscription, m.ID).Err(); err != nil {
				b.logger.WarnContext(ctx, "failed to drop empty stream entry",
					logger.AckID(m.ID),
					logger.Error(err))
			}
		}
	}
	return nil, false
}

func (b *RedisBroker) mapError(err error) error {
	if strings.HasPrefix(err.Error(), "NOGROUP") {
		return fmt.Errorf("%w: %v", ErrSubscriptionNotFound, err)
	}
	return err
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}
