package db

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/kcidb/kcidb-go/pkg/logger"
	"github.com/kcidb/kcidb-go/pkg/report"
)

// Client guards a Driver with the contract's preconditions.
type Client struct {
	driver Driver
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient wraps driver.
func NewClient(driver Driver, opts ...ClientOption) (*Client, error) {
	if driver == nil {
		return nil, ErrDriverNil
	}
	c := &Client{driver: driver, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SchemaVersion returns the storage schema version, ok == false if the
// storage is uninitialized.
func (c *Client) SchemaVersion(ctx context.Context) (report.Version, bool, error) {
	return c.driver.SchemaVersion(ctx)
}

// IsInitialized reports whether the storage is initialized.
func (c *Client) IsInitialized(ctx context.Context) (bool, error) {
	_, ok, err := c.driver.SchemaVersion(ctx)
	return ok, err
}

func (c *Client) requireInitialized(ctx context.Context) error {
	ok, err := c.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUninitialized
	}
	return nil
}

// Init initializes the storage, which must be uninitialized.
func (c *Client) Init(ctx context.Context) error {
	ok, err := c.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if ok {
		return ErrInitialized
	}
	if err := c.driver.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

// Cleanup empties an initialized storage.
func (c *Client) Cleanup(ctx context.Context) error {
	if err := c.requireInitialized(ctx); err != nil {
		return err
	}
	if err := c.driver.Cleanup(ctx); err != nil {
		return fmt.Errorf("failed to clean up database: %w", err)
	}
	return nil
}

// LastModified returns the time of the latest data change.
func (c *Client) LastModified(ctx context.Context) (time.Time, error) {
	if err := c.requireInitialized(ctx); err != nil {
		return time.Time{}, err
	}
	return c.driver.LastModified(ctx)
}

// Dump yields all data in chunks of at most objectsPerChunk objects.
func (c *Client) Dump(ctx context.Context, objectsPerChunk int) iter.Seq2[report.Data, error] {
	if err := c.checkRead(ctx, objectsPerChunk); err != nil {
		return failed(err)
	}
	return c.driver.Dump(ctx, objectsPerChunk)
}

// Query yields the objects matching req in chunks of at most
// objectsPerChunk objects.
func (c *Client) Query(ctx context.Context, req QueryRequest, objectsPerChunk int) iter.Seq2[report.Data, error] {
	if err := c.checkRead(ctx, objectsPerChunk); err != nil {
		return failed(err)
	}
	for name := range req.IDs {
		if !slices.Contains(report.Collections, name) {
			return failed(fmt.Errorf("%w: %q", ErrUnknownType, name))
		}
	}
	return c.driver.Query(ctx, req, objectsPerChunk)
}

// ObjectQuery returns the requested objects grouped by type.
func (c *Client) ObjectQuery(ctx context.Context, reqs []ObjectRequest) (map[string][]report.Object, error) {
	if err := c.requireInitialized(ctx); err != nil {
		return nil, err
	}
	for _, r := range reqs {
		if !slices.Contains(report.Collections, r.Type) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, r.Type)
		}
	}
	return c.driver.ObjectQuery(ctx, reqs)
}

// Load stores data, which must be valid under the latest schema.
// ErrOverload from the driver is returned as is, for the caller to retry.
func (c *Client) Load(ctx context.Context, data report.Data) error {
	if err := c.requireInitialized(ctx); err != nil {
		return err
	}
	if err := report.ValidateLatest(data); err != nil {
		return errors.Join(ErrInvalidData, err)
	}

	start := time.Now()
	if err := c.driver.Load(ctx, data); err != nil {
		if errors.Is(err, ErrOverload) {
			return err
		}
		return fmt.Errorf("failed to load data: %w", err)
	}
	c.logger.DebugContext(ctx, "data loaded",
		logger.Count(data.Count()),
		logger.Duration(time.Since(start)))
	return nil
}

func (c *Client) checkRead(ctx context.Context, objectsPerChunk int) error {
	if objectsPerChunk < 0 {
		return ErrInvalidChunkSize
	}
	return c.requireInitialized(ctx)
}

func failed(err error) iter.Seq2[report.Data, error] {
	return func(yield func(report.Data, error) bool) {
		yield(nil, err)
	}
}
