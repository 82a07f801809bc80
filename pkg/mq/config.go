package mq

import "time"

// Config holds the message queue configuration
type Config struct {
	Topic        string        `env:"KCIDB_MQ_TOPIC" envDefault:"kcidb_new"`
	Subscription string        `env:"KCIDB_MQ_SUBSCRIPTION" envDefault:"kcidb_load"`
	PullTimeout  time.Duration `env:"KCIDB_MQ_PULL_TIMEOUT" envDefault:"5m"`
	AckDeadline  time.Duration `env:"KCIDB_MQ_ACK_DEADLINE" envDefault:"10m"`
}
