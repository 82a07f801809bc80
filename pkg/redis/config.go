package redis

import "time"

// Config holds the Redis connection settings. The URL has the form
// redis://:password@localhost:6379/0.
type Config struct {
	ConnectionURL  string        `env:"KCIDB_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"KCIDB_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"KCIDB_REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"KCIDB_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}
