package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Load default config when no config file is present", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "8081")
		t.Setenv("REMOTE_BASEURL", "http://backend:3000")

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, 8081, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)

		assert.Equal(t, "http://backend:3000", cfg.Remote.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)

		assert.Equal(t, "info", cfg.Logger.Level)
		assert.Equal(t, "json", cfg.Logger.Encoding)

		assert.Equal(t, "/metrics", cfg.Metrics.Path)

		assert.False(t, cfg.RabbitMQ.Enabled)
		assert.Equal(t, "customer-store", cfg.RabbitMQ.ExchangeName)
		assert.Equal(t, "", cfg.RabbitMQ.QueueName)
		assert.Equal(t, "customer-store", cfg.RabbitMQ.ConsumerTag)

		assert.Equal(t, "@every 5m", cfg.Refresh.Schedule)
		assert.Equal(t, 30*time.Second, cfg.Refresh.Timeout)

		assert.Equal(t, "memory", cfg.Database.Driver)
		assert.Equal(t, 4, cfg.Database.MaxConns)
		assert.Equal(t, 3000, cfg.Sandbox.Port)
	})

	t.Run("Values from config file", func(t *testing.T) {
		dir := t.TempDir()
		content := []byte(`
remote:
  baseURL: http://customers.internal
  bearerToken: secret
refresh:
  enabled: true
  schedule: "*/10 * * * *"
database:
  driver: sqlite
  url: file:customers.db
  seed: 25
`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o644))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, "http://customers.internal", cfg.Remote.BaseURL)
		assert.Equal(t, "secret", cfg.Remote.BearerToken)
		assert.True(t, cfg.Refresh.Enabled)
		assert.Equal(t, "*/10 * * * *", cfg.Refresh.Schedule)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, 25, cfg.Database.Seed)
	})
}

func TestRabbitMQConfig_URL(t *testing.T) {
	cfg := RabbitMQConfig{Host: "mq", Port: 5672, Username: "guest", Password: "pw"}

	assert.Equal(t, "amqp://guest:pw@mq:5672/", cfg.URL())
}
