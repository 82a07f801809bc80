package logger

// Config holds logger settings loaded from the environment.
type Config struct {
	Level  string `env:"KCIDB_LOG_LEVEL" envDefault:"info"`
	Format string `env:"KCIDB_LOG_FORMAT" envDefault:"json"`
}
