package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/mail"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kcidb/kcidb-go/pkg/email"
	"github.com/kcidb/kcidb-go/pkg/logger"
)

// Outbox is the delivery side of the spool. *spool.Client implements it.
type Outbox interface {
	Unpicked(ctx context.Context, at time.Time) iter.Seq2[string, error]
	Pick(ctx context.Context, id string, at time.Time, lease time.Duration) (*mail.Message, bool, error)
	Ack(ctx context.Context, id string, at time.Time) error
}

// Deliverer sends spooled notifications.
type Deliverer struct {
	outbox   Outbox
	sender   email.Sender
	workers  int
	interval time.Duration
	logger   *slog.Logger
}

// NewDeliverer creates a Deliverer sending through sender.
func NewDeliverer(outbox Outbox, sender email.Sender, opts ...Option) (*Deliverer, error) {
	if outbox == nil {
		return nil, ErrSpoolNil
	}
	if sender == nil {
		return nil, ErrSenderNil
	}
	o := newOptions(30*time.Second, opts)
	return &Deliverer{
		outbox:   outbox,
		sender:   sender,
		workers:  o.workers,
		interval: o.interval,
		logger:   o.logger.With(logger.Component("deliverer")),
	}, nil
}

// Step delivers the notifications unpicked at the start of the pass and
// returns how many were sent. A notification another deliverer picked
// first is skipped. Send failures are logged and left to be retried once
// the lease expires; spool failures abort the pass.
func (d *Deliverer) Step(ctx context.Context) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	var sent atomic.Int64
	for id, err := range d.outbox.Unpicked(gctx, time.Time{}) {
		if err != nil {
			// A failed worker cancels gctx, which ends the listing too.
			if werr := g.Wait(); werr != nil {
				return int(sent.Load()), werr
			}
			return int(sent.Load()), err
		}
		g.Go(func() error {
			ok, err := d.deliver(logger.WithNotification(gctx, id), id)
			if ok {
				sent.Add(1)
			}
			return err
		})
	}
	err := g.Wait()
	return int(sent.Load()), err
}

func (d *Deliverer) deliver(ctx context.Context, id string) (bool, error) {
	msg, ok, err := d.outbox.Pick(ctx, id, time.Time{}, 0)
	if err != nil {
		return false, fmt.Errorf("failed to pick notification %s: %w", id, err)
	}
	if !ok {
		return false, nil
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.WarnContext(ctx, "notification delivery failed", logger.Error(err))
		return false, nil
	}
	if err := d.outbox.Ack(ctx, id, time.Time{}); err != nil {
		return false, fmt.Errorf("failed to acknowledge notification %s: %w", id, err)
	}
	d.logger.InfoContext(ctx, "notification sent")
	return true, nil
}

// Run delivers notifications every interval until ctx is cancelled.
func (d *Deliverer) Run(ctx context.Context) error {
	for {
		start := time.Now()
		n, err := d.Step(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			d.logger.ErrorContext(ctx, "delivery pass failed", logger.Error(err))
		} else if n > 0 {
			d.logger.InfoContext(ctx, "delivery pass finished",
				logger.Count(n),
				logger.Duration(time.Since(start)))
		}
		if sleep(ctx, d.interval) != nil {
			return nil
		}
	}
}
