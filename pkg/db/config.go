package db

// Config holds storage settings.
type Config struct {
	// MaxConcurrentLoads caps parallel loads before Load reports overload.
	// Zero disables throttling.
	MaxConcurrentLoads int64 `env:"KCIDB_DB_MAX_CONCURRENT_LOADS" envDefault:"4"`
	// ObjectsPerChunk bounds the size of dumped and queried reports.
	ObjectsPerChunk int `env:"KCIDB_DB_OBJECTS_PER_CHUNK" envDefault:"0"`
}
