package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcidb/kcidb-go/pkg/config"
)

type brokerConfig struct {
	Topic       string        `env:"MQ_TOPIC" envDefault:"kcidb_new"`
	PullTimeout time.Duration `env:"MQ_PULL_TIMEOUT" envDefault:"5m"`
	Workers     int           `env:"MQ_WORKERS" envDefault:"4"`
	Debug       bool          `env:"MQ_DEBUG"`
}

type requiredConfig struct {
	URL string `env:"CONFIG_TEST_REQUIRED_URL,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg brokerConfig
		require.NoError(t, config.Load(&cfg, config.WithEnvironment(map[string]string{})))
		assert.Equal(t, "kcidb_new", cfg.Topic)
		assert.Equal(t, 5*time.Minute, cfg.PullTimeout)
		assert.Equal(t, 4, cfg.Workers)
		assert.False(t, cfg.Debug)
	})

	t.Run("process environment", func(t *testing.T) {
		t.Setenv("MQ_TOPIC", "playground")
		t.Setenv("MQ_PULL_TIMEOUT", "30s")

		var cfg brokerConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "playground", cfg.Topic)
		assert.Equal(t, 30*time.Second, cfg.PullTimeout)
	})

	t.Run("prefix", func(t *testing.T) {
		var cfg brokerConfig
		require.NoError(t, config.Load(&cfg,
			config.WithPrefix("TEST_"),
			config.WithEnvironment(map[string]string{
				"TEST_MQ_TOPIC":   "prefixed",
				"MQ_TOPIC":        "ignored",
				"TEST_MQ_WORKERS": "1",
			})))
		assert.Equal(t, "prefixed", cfg.Topic)
		assert.Equal(t, 1, cfg.Workers)
	})

	t.Run("parse error", func(t *testing.T) {
		var cfg brokerConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{"MQ_WORKERS": "many"}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("missing required", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[brokerConfig](nil), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg, config.WithEnvironment(map[string]string{}))
	})
	assert.NotPanics(t, func() {
		var cfg brokerConfig
		config.MustLoad(&cfg, config.WithEnvironment(map[string]string{}))
	})
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CONFIG_TEST_FROM_FILE=from-file\nCONFIG_TEST_PRESET=file\n"), 0o600))
	t.Setenv("CONFIG_TEST_PRESET", "process")
	t.Cleanup(func() { _ = os.Unsetenv("CONFIG_TEST_FROM_FILE") })

	require.NoError(t, config.LoadEnv(path))
	assert.Equal(t, "from-file", os.Getenv("CONFIG_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("CONFIG_TEST_PRESET"))

	assert.ErrorIs(t, config.LoadEnv(filepath.Join(t.TempDir(), "missing.env")), config.ErrLoadingEnvFile)
	assert.NoError(t, config.LoadEnv())
}
