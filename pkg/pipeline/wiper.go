package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/kcidb/kcidb-go/pkg/logger"
)

// Wipeable is the retention side of the spool. *spool.Client implements it.
type Wipeable interface {
	Wipe(ctx context.Context, until time.Time) (int64, error)
}

// Wiper removes old spooled notifications.
type Wiper struct {
	spool    Wipeable
	age      time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewWiper creates a Wiper keeping notifications for the wipe age.
func NewWiper(spool Wipeable, opts ...Option) (*Wiper, error) {
	if spool == nil {
		return nil, ErrSpoolNil
	}
	o := newOptions(time.Hour, opts)
	return &Wiper{
		spool:    spool,
		age:      o.age,
		interval: o.interval,
		now:      o.now,
		logger:   o.logger.With(logger.Component("wiper")),
	}, nil
}

// Step removes notifications created at or before now minus the wipe age.
func (w *Wiper) Step(ctx context.Context) (int64, error) {
	return w.spool.Wipe(ctx, w.now().Add(-w.age))
}

// Run wipes every interval until ctx is cancelled.
func (w *Wiper) Run(ctx context.Context) error {
	for {
		n, err := w.Step(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			w.logger.ErrorContext(ctx, "spool wipe failed", logger.Error(err))
		} else if n > 0 {
			w.logger.InfoContext(ctx, "spool wiped", logger.Count(int(n)))
		}
		if sleep(ctx, w.interval) != nil {
			return nil
		}
	}
}
