package spool

import "time"

// Store backends selectable through Config.Backend.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config holds spool settings.
type Config struct {
	Backend     string        `env:"KCIDB_SPOOL_BACKEND" envDefault:"memory"`
	PickTimeout time.Duration `env:"KCIDB_SPOOL_PICK_TIMEOUT" envDefault:"10m"`
	PageSize    int           `env:"KCIDB_SPOOL_PAGE_SIZE" envDefault:"100"`
	// Collection names the MongoDB collection holding notifications.
	Collection string `env:"KCIDB_SPOOL_COLLECTION" envDefault:"notifications"`
}
