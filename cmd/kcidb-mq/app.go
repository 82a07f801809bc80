package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/kcidb/kcidb-go/pkg/config"
	"github.com/kcidb/kcidb-go/pkg/logger"
	"github.com/kcidb/kcidb-go/pkg/mq"
	"github.com/kcidb/kcidb-go/pkg/redis"
)

type settings struct {
	Log   logger.Config
	MQ    mq.Config
	Redis redis.Config
}

// app holds what commands share. connect is replaced in tests.
type app struct {
	cfg     settings
	logger  *slog.Logger
	connect func(ctx context.Context, a *app) (mq.Broker, io.Closer, error)
}

func newApp() *app {
	return &app{connect: connectRedis}
}

func (a *app) setup(stderr io.Writer) error {
	if err := config.Load(&a.cfg); err != nil {
		return err
	}
	a.logger = logger.New(
		logger.FromConfig(a.cfg.Log),
		logger.WithService("kcidb-mq"),
		logger.WithOutput(stderr),
	)
	return nil
}

func connectRedis(ctx context.Context, a *app) (mq.Broker, io.Closer, error) {
	client, err := redis.Connect(ctx, a.cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	broker := mq.NewRedisBroker(client,
		mq.WithRedisAckDeadline(a.cfg.MQ.AckDeadline),
		mq.WithRedisLogger(a.logger))
	return broker, client, nil
}

// withBroker connects, runs fn and disconnects.
func (a *app) withBroker(ctx context.Context, fn func(mq.Broker) error) error {
	broker, closer, err := a.connect(ctx, a)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			a.logger.WarnContext(ctx, "failed to close broker connection", logger.Error(err))
		}
	}()
	return fn(broker)
}
