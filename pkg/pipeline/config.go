package pipeline

import "time"

// Config holds loop settings.
type Config struct {
	DeliveryWorkers  int           `env:"KCIDB_DELIVERY_WORKERS" envDefault:"4"`
	DeliveryInterval time.Duration `env:"KCIDB_DELIVERY_INTERVAL" envDefault:"30s"`
	WipeInterval     time.Duration `env:"KCIDB_WIPE_INTERVAL" envDefault:"1h"`
	// WipeAge is how long spooled notifications are kept.
	WipeAge        time.Duration `env:"KCIDB_WIPE_AGE" envDefault:"168h"`
	BackoffInitial time.Duration `env:"KCIDB_BACKOFF_INITIAL" envDefault:"1s"`
	BackoffMax     time.Duration `env:"KCIDB_BACKOFF_MAX" envDefault:"1m"`
}
