package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kcidb/kcidb-go/pkg/config"
	"github.com/kcidb/kcidb-go/pkg/db"
	"github.com/kcidb/kcidb-go/pkg/email"
	"github.com/kcidb/kcidb-go/pkg/logger"
	"github.com/kcidb/kcidb-go/pkg/mongo"
	"github.com/kcidb/kcidb-go/pkg/mq"
	"github.com/kcidb/kcidb-go/pkg/pg"
	"github.com/kcidb/kcidb-go/pkg/pipeline"
	"github.com/kcidb/kcidb-go/pkg/redis"
	"github.com/kcidb/kcidb-go/pkg/spool"
)

type settings struct {
	Log      logger.Config
	MQ       mq.Config
	Redis    redis.Config
	DB       db.Config
	Spool    spool.Config
	Email    email.Config
	Pipeline pipeline.Config
}

// backend is an opened connection with its healthcheck.
type backend struct {
	health func(context.Context) error
	close  func()
}

// app holds what commands share. The open functions are replaced in tests.
type app struct {
	cfg    settings
	logger *slog.Logger

	connect   func(ctx context.Context, a *app) (mq.Broker, backend, error)
	openSpool func(ctx context.Context, a *app) (*spool.Client, backend, error)
	newSender func(a *app) (email.Sender, error)
}

func newApp() *app {
	return &app{
		connect:   connectRedis,
		openSpool: openSpool,
		newSender: func(a *app) (email.Sender, error) { return email.New(a.cfg.Email) },
	}
}

func (a *app) setup(stderr io.Writer) error {
	if err := config.Load(&a.cfg); err != nil {
		return err
	}
	a.logger = logger.New(
		logger.FromConfig(a.cfg.Log),
		logger.WithService("kcidb-monitor"),
		logger.WithOutput(stderr),
	)
	return nil
}

func connectRedis(ctx context.Context, a *app) (mq.Broker, backend, error) {
	client, err := redis.Connect(ctx, a.cfg.Redis)
	if err != nil {
		return nil, backend{}, err
	}
	broker := mq.NewRedisBroker(client,
		mq.WithRedisAckDeadline(a.cfg.MQ.AckDeadline),
		mq.WithRedisLogger(a.logger))
	return broker, backend{
		health: redis.Healthcheck(client),
		close: func() {
			if err := client.Close(); err != nil {
				a.logger.WarnContext(ctx, "failed to close redis connection", logger.Error(err))
			}
		},
	}, nil
}

// openSpool opens the store selected by the spool backend setting. The
// postgres and mongo settings are only loaded when their backend is used.
func openSpool(ctx context.Context, a *app) (*spool.Client, backend, error) {
	var (
		store spool.Store
		b     backend
	)
	switch a.cfg.Spool.Backend {
	case spool.BackendMemory:
		store = spool.NewMemoryStore()
		b = backend{health: func(context.Context) error { return nil }, close: func() {}}

	case spool.BackendPostgres:
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, backend{}, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, backend{}, err
		}
		if err := pg.Migrate(ctx, pool, spool.PostgresMigrations, spool.PostgresMigrationsDir, cfg, a.logger); err != nil {
			pool.Close()
			return nil, backend{}, err
		}
		store = spool.NewPostgresStore(pool)
		b = backend{health: pg.Healthcheck(pool), close: pool.Close}

	case spool.BackendMongo:
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, backend{}, err
		}
		database, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return nil, backend{}, err
		}
		client := database.Client()
		closeClient := func() {
			if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
				a.logger.WarnContext(ctx, "failed to close mongo connection", logger.Error(err))
			}
		}
		mongoStore := spool.NewMongoStore(database, a.cfg.Spool.Collection)
		if err := mongoStore.Init(ctx); err != nil {
			closeClient()
			return nil, backend{}, fmt.Errorf("failed to create spool indexes: %w", err)
		}
		store = mongoStore
		b = backend{health: mongo.Healthcheck(client), close: closeClient}

	default:
		return nil, backend{}, fmt.Errorf("%w: %q", spool.ErrUnknownBackend, a.cfg.Spool.Backend)
	}

	client, err := spool.NewClient(store,
		spool.WithConfig(a.cfg.Spool),
		spool.WithLogger(a.logger))
	if err != nil {
		b.close()
		return nil, backend{}, err
	}
	return client, b, nil
}

// withSpool opens the spool, runs fn and closes it.
func (a *app) withSpool(ctx context.Context, fn func(*spool.Client) error) error {
	sp, b, err := a.openSpool(ctx, a)
	if err != nil {
		return err
	}
	defer b.close()
	return fn(sp)
}
