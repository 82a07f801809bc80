package spool

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/kcidb/kcidb-go/pkg/logger"
)

// Notification is anything the spool can store: it has a stable ID and
// renders into an RFC 5322 message.
type Notification interface {
	ID() string
	Render() (string, error)
}

// Client is the notification spool.
type Client struct {
	store       Store
	pickTimeout time.Duration
	pageSize    int
	now         func() time.Time
	logger      *slog.Logger
}

// NewClient creates a spool client on top of store.
func NewClient(store Store, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	c := &Client{
		store:       store,
		pickTimeout: DefaultPickTimeout,
		pageSize:    DefaultPageSize,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PickTimeout returns the default lease duration.
func (c *Client) PickTimeout() time.Duration {
	return c.pickTimeout
}

// timestamp resolves a zero time to now. Times are kept in UTC at
// microsecond precision so every store round-trips them unchanged.
func (c *Client) timestamp(at time.Time) time.Time {
	if at.IsZero() {
		at = c.now()
	}
	return at.UTC().Truncate(time.Microsecond)
}

func validateID(id string) error {
	if !IsValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Put stores n, created at the given time, unless a notification with the
// same ID is already spooled. It reports whether n was stored.
func (c *Client) Put(ctx context.Context, n Notification, at time.Time) (bool, error) {
	id := n.ID()
	if err := validateID(id); err != nil {
		return false, err
	}
	at = c.timestamp(at)

	var created bool
	err := c.store.RunTx(ctx, id, func(ctx context.Context, tx Tx) error {
		created = false
		if _, found, err := tx.Get(ctx); err != nil || found {
			return err
		}
		text, err := n.Render()
		if err != nil {
			return errors.Join(ErrRender, err)
		}
		if err := tx.Create(ctx, Document{
			ID:          id,
			CreatedAt:   at,
			PickedUntil: NeverPicked,
			Message:     text,
		}); err != nil {
			return err
		}
		created = true
		return nil
	})
	if errors.Is(err, ErrExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to put notification %q: %w", id, err)
	}

	if created {
		c.logger.DebugContext(ctx, "notification spooled", logger.NotificationID(id))
	}
	return created, nil
}

// Pick leases the notification for delivery until at+lease and returns its
// message. It returns ok == false, without changing anything, if the
// notification is missing, has no message, or is leased or acknowledged.
func (c *Client) Pick(ctx context.Context, id string, at time.Time, lease time.Duration) (*mail.Message, bool, error) {
	if err := validateID(id); err != nil {
		return nil, false, err
	}
	at = c.timestamp(at)
	if lease <= 0 {
		lease = c.pickTimeout
	}
	until := at.Add(lease)

	var msg *mail.Message
	err := c.store.RunTx(ctx, id, func(ctx context.Context, tx Tx) error {
		msg = nil
		doc, found, err := tx.Get(ctx)
		if err != nil {
			return err
		}
		if !found || doc.Message == "" || doc.PickedUntil.After(at) {
			return nil
		}
		parsed, err := mail.ReadMessage(strings.NewReader(doc.Message))
		if err != nil {
			return errors.Join(ErrInvalidMessage, err)
		}
		if err := tx.Update(ctx, Patch{PickedAt: &at, PickedUntil: &until}); err != nil {
			return err
		}
		msg = parsed
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to pick notification %q: %w", id, err)
	}
	return msg, msg != nil, nil
}

// Ack marks the notification delivered at the given time. It is never
// picked again. Acknowledging a missing notification returns ErrNotFound.
func (c *Client) Ack(ctx context.Context, id string, at time.Time) error {
	if err := validateID(id); err != nil {
		return err
	}
	at = c.timestamp(at)
	forever := Forever
	if err := c.store.Update(ctx, id, Patch{AckedAt: &at, PickedUntil: &forever}); err != nil {
		return fmt.Errorf("failed to ack notification %q: %w", id, err)
	}
	return nil
}

// Delete removes the notification regardless of its state.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete notification %q: %w", id, err)
	}
	return nil
}

// Wipe removes every notification created at or before until and returns
// how many were removed. A zero until means now.
func (c *Client) Wipe(ctx context.Context, until time.Time) (int64, error) {
	until = c.timestamp(until)
	n, err := c.store.DeleteCreatedUntil(ctx, until)
	if err != nil {
		return n, fmt.Errorf("failed to wipe notifications: %w", err)
	}
	c.logger.DebugContext(ctx, "spool wiped", logger.Count(int(n)), slog.Time("until", until))
	return n, nil
}

// Unpicked yields IDs of notifications that can be picked at the given
// time. The sequence reads the store lazily, page by page; each range over
// it starts from the beginning.
func (c *Client) Unpicked(ctx context.Context, at time.Time) iter.Seq2[string, error] {
	at = c.timestamp(at)
	return func(yield func(string, error) bool) {
		for id, err := range c.store.ScanPickedBefore(ctx, at, c.pageSize) {
			if err != nil {
				yield("", fmt.Errorf("failed to list unpicked notifications: %w", err))
				return
			}
			if !yield(id, nil) {
				return
			}
		}
	}
}
