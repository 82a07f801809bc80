package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kcidb/kcidb-go/pkg/db"
	"github.com/kcidb/kcidb-go/pkg/logger"
	"github.com/kcidb/kcidb-go/pkg/monitor"
	"github.com/kcidb/kcidb-go/pkg/mq"
	"github.com/kcidb/kcidb-go/pkg/report"
	"github.com/kcidb/kcidb-go/pkg/spool"
)

// Subscriber is the report source. *mq.Subscriber implements it.
type Subscriber interface {
	Pull(ctx context.Context) (mq.AckID, report.Data, error)
	Ack(ctx context.Context, id mq.AckID) error
}

// Loader stores reports. *db.Client implements it.
type Loader interface {
	Load(ctx context.Context, data report.Data) error
}

// Matcher produces notifications for loaded reports. *monitor.Monitor
// implements it.
type Matcher interface {
	Match(ctx context.Context, data report.Data) ([]monitor.Notification, error)
}

// Putter accepts notifications. *spool.Client implements it.
type Putter interface {
	Put(ctx context.Context, n spool.Notification, at time.Time) (bool, error)
}

// Ingester moves reports from the queue into the database and spool.
type Ingester struct {
	sub     Subscriber
	loader  Loader
	matcher Matcher
	spool   Putter
	backoff Backoff
	logger  *slog.Logger
}

// NewIngester creates an Ingester. A nil matcher or spool disables
// notification generation.
func NewIngester(sub Subscriber, loader Loader, matcher Matcher, spool Putter, opts ...Option) (*Ingester, error) {
	if sub == nil {
		return nil, ErrSubscriberNil
	}
	if loader == nil {
		return nil, ErrLoaderNil
	}
	o := newOptions(0, opts)
	return &Ingester{
		sub:     sub,
		loader:  loader,
		matcher: matcher,
		spool:   spool,
		backoff: o.backoff,
		logger:  o.logger.With(logger.Component("ingester")),
	}, nil
}

// Step ingests a single report. Reports that cannot be decoded or loaded
// as valid data are acknowledged and dropped. On db.ErrOverload the report
// stays unacknowledged, to be redelivered, and the error is returned.
func (i *Ingester) Step(ctx context.Context) error {
	id, data, err := i.sub.Pull(ctx)
	if err != nil {
		if id != "" && (errors.Is(err, mq.ErrInvalidPayload) || errors.Is(err, mq.ErrInconsistent)) {
			i.logger.WarnContext(ctx, "dropping undecodable report",
				logger.AckID(string(id)),
				logger.Error(err))
			return i.sub.Ack(ctx, id)
		}
		return err
	}

	if err := i.loader.Load(ctx, data); err != nil {
		switch {
		case errors.Is(err, db.ErrOverload):
			i.logger.DebugContext(ctx, "storage overloaded, leaving report unacknowledged",
				logger.AckID(string(id)))
			return err
		case errors.Is(err, db.ErrInvalidData):
			i.logger.WarnContext(ctx, "dropping invalid report",
				logger.AckID(string(id)),
				logger.Error(err))
			return i.sub.Ack(ctx, id)
		}
		return fmt.Errorf("failed to load report: %w", err)
	}

	if err := i.notify(ctx, data); err != nil {
		return err
	}
	return i.sub.Ack(ctx, id)
}

func (i *Ingester) notify(ctx context.Context, data report.Data) error {
	if i.matcher == nil || i.spool == nil {
		return nil
	}
	notes, err := i.matcher.Match(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to match report: %w", err)
	}
	for _, n := range notes {
		created, err := i.spool.Put(ctx, n, time.Time{})
		if err != nil {
			return fmt.Errorf("failed to spool notification %s: %w", n.ID(), err)
		}
		if created {
			i.logger.InfoContext(ctx, "notification spooled",
				logger.NotificationID(n.ID()),
				logger.Object(n.ObjectType, n.ObjectID))
		}
	}
	return nil
}

// Run ingests reports until ctx is cancelled, backing off after failures.
// A missing topic or subscription stops it with an error.
func (i *Ingester) Run(ctx context.Context) error {
	failures := 0
	for {
		err := i.Step(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			failures = 0
			continue
		}
		if errors.Is(err, mq.ErrTopicNotFound) || errors.Is(err, mq.ErrSubscriptionNotFound) {
			return err
		}

		failures++
		delay := i.backoff.NextInterval(failures)
		level := slog.LevelError
		if errors.Is(err, db.ErrOverload) {
			level = slog.LevelDebug
		}
		i.logger.Log(ctx, level, "ingestion failed, backing off",
			logger.Error(err),
			logger.RetryCount(failures),
			logger.Duration(delay))
		if sleep(ctx, delay) != nil {
			return nil
		}
	}
}
