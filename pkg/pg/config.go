package pg

import "time"

// Config holds PostgreSQL pool settings.
type Config struct {
	ConnectionString  string        `env:"KCIDB_PG_URL,required"`
	MaxOpenConns      int32         `env:"KCIDB_PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns      int32         `env:"KCIDB_PG_MAX_IDLE_CONNS" envDefault:"2"`
	HealthCheckPeriod time.Duration `env:"KCIDB_PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"KCIDB_PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"KCIDB_PG_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"KCIDB_PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"KCIDB_PG_RETRY_INTERVAL" envDefault:"5s"`

	// MigrationsTable is where goose records applied schema versions.
	MigrationsTable string `env:"KCIDB_PG_MIGRATIONS_TABLE" envDefault:"kcidb_schema_migrations"`
}
