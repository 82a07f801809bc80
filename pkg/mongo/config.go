package mongo

import "time"

// Config represents the MongoDB connection settings.
type Config struct {
	ConnectionURL   string        `env:"KCIDB_MONGO_URL,required"`
	Database        string        `env:"KCIDB_MONGO_DATABASE" envDefault:"kcidb"`
	ConnectTimeout  time.Duration `env:"KCIDB_MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize     uint64        `env:"KCIDB_MONGO_MAX_POOL_SIZE" envDefault:"100"`
	MinPoolSize     uint64        `env:"KCIDB_MONGO_MIN_POOL_SIZE" envDefault:"1"`
	MaxConnIdleTime time.Duration `env:"KCIDB_MONGO_MAX_CONN_IDLE_TIME" envDefault:"300s"`
	RetryWrites     bool          `env:"KCIDB_MONGO_RETRY_WRITES" envDefault:"true"`
	RetryReads      bool          `env:"KCIDB_MONGO_RETRY_READS" envDefault:"true"`
	RetryAttempts   int           `env:"KCIDB_MONGO_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval   time.Duration `env:"KCIDB_MONGO_RETRY_INTERVAL" envDefault:"5s"`
}
