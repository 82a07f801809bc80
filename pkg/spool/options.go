package spool

import (
	"log/slog"
	"time"
)

// DefaultPickTimeout is how long a picked notification stays leased.
const DefaultPickTimeout = 10 * time.Minute

// DefaultPageSize is the number of IDs Unpicked fetches per store round trip.
const DefaultPageSize = 100

// Option configures a Client.
type Option func(*Client)

// WithPickTimeout sets the default lease for Pick.
func WithPickTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pickTimeout = d
		}
	}
}

// WithPageSize sets how many IDs Unpicked reads per round trip.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithClock replaces time.Now for zero timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConfig applies the pick timeout and page size from cfg.
func WithConfig(cfg Config) Option {
	return func(c *Client) {
		WithPickTimeout(cfg.PickTimeout)(c)
		WithPageSize(cfg.PageSize)(c)
	}
}
