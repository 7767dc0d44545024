package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8001", cfg.Server.HTTPAddress)
	assert.Empty(t, cfg.Server.RPCAddress)
	assert.Equal(t, int64(100), cfg.Player.InitialBalance)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Dealer.URL)
	assert.Equal(t, 2*time.Second, cfg.Dealer.Timeout)
	assert.Equal(t, 2, cfg.Dealer.Retries)
	assert.True(t, cfg.Dealer.NotifyOnJoin)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`
server:
  http_address: ":9001"
player:
  initial_balance: 250
dealer:
  url: "http://dealer:8000"
  timeout: 500ms
  notify_on_join: false
database:
  driver: gorm
  postgres:
    port: 6543
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9001", cfg.Server.HTTPAddress)
	assert.Equal(t, int64(250), cfg.Player.InitialBalance)
	assert.Equal(t, "http://dealer:8000", cfg.Dealer.URL)
	assert.Equal(t, 500*time.Millisecond, cfg.Dealer.Timeout)
	assert.False(t, cfg.Dealer.NotifyOnJoin)
	assert.Equal(t, "gorm", cfg.Database.Driver)
	assert.Equal(t, 6543, cfg.Database.Postgres.Port)
	assert.Equal(t, "127.0.0.1", cfg.Database.Postgres.Host)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("PLAYER_DEALER_URL", "http://from-env:8000")
	t.Setenv("PLAYER_PLAYER_INITIAL_BALANCE", "42")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8000", cfg.Dealer.URL)
	assert.Equal(t, int64(42), cfg.Player.InitialBalance)
}

func TestLoadConfig_InvalidDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("database:\n  driver: mongo\n"), 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
