package pipeline

import (
	"log/slog"
	"time"
)

type options struct {
	logger   *slog.Logger
	backoff  Backoff
	workers  int
	interval time.Duration
	age      time.Duration
	now      func() time.Time
}

func newOptions(defaultInterval time.Duration, opts []Option) options {
	o := options{
		logger:   slog.Default(),
		backoff:  ExponentialBackoff{InitialInterval: time.Second, MaxInterval: time.Minute, JitterFactor: 0.2},
		workers:  4,
		interval: defaultInterval,
		age:      7 * 24 * time.Hour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a pipeline loop.
type Option func(*options)

// WithLogger sets the loop logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBackoff sets the delay strategy applied after failures.
func WithBackoff(b Backoff) Option {
	return func(o *options) {
		if b != nil {
			o.backoff = b
		}
	}
}

// WithWorkers sets how many notifications are delivered in parallel.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithInterval sets the pause between delivery or wipe passes.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithWipeAge sets how long spooled notifications are kept.
func WithWipeAge(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.age = d
		}
	}
}

// WithClock overrides the time source used by the wiper.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithConfig applies the worker, retention and backoff settings of cfg.
// Loop intervals are set with WithInterval.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		WithWorkers(cfg.DeliveryWorkers)(o)
		WithWipeAge(cfg.WipeAge)(o)
		if cfg.BackoffInitial > 0 || cfg.BackoffMax > 0 {
			o.backoff = ExponentialBackoff{
				InitialInterval: cfg.BackoffInitial,
				MaxInterval:     cfg.BackoffMax,
				JitterFactor:    0.2,
			}
		}
	}
}
