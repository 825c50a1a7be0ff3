package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig(t *testing.T) {
	content := `
service:
  name: payment
  environment: production
  paystack:
    secret_key: sk_test_abc
    webhook_secret: whsec_abc
    live_mode: true
    timeout: 5s
  settlement:
    account_number: "0123456789"
    bank_code: "058"
database:
  host: db.internal
  port: 5432
  name: payment
server:
  http:
    host: 0.0.0.0
    port: 8080
  rate_limit:
    enabled: true
    limit: 60
    window: 1m
sweeper:
  enabled: true
  interval: 10m
  min_age: 1800
`
	path := filepath.Join(t.TempDir(), "payment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "payment", cfg.Service.Name)
	assert.True(t, cfg.Service.IsProduction())
	assert.True(t, cfg.Service.Paystack.LiveMode)
	assert.Equal(t, 5*time.Second, cfg.Service.Paystack.Timeout.Std())
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, time.Minute, cfg.Server.RateLimit.Window.Std())
	assert.Equal(t, 10*time.Minute, cfg.Sweeper.Interval.Std())
	// Bare integers are seconds.
	assert.Equal(t, 30*time.Minute, cfg.Sweeper.MinAge.Std())
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		Name:     "payment",
		User:     "svc",
		Password: "secret",
	}
	assert.Equal(t,
		"host=db.internal port=5432 user=svc password=secret dbname=payment sslmode=disable",
		cfg.DSN())

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}

func TestDurationRejectsGarbage(t *testing.T) {
	var cfg SweeperConfig
	err := yaml.Unmarshal([]byte("interval: soon"), &cfg)
	assert.Error(t, err)
}
