package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, ":8000", cfg.Server.ListenAddr)
	require.Equal(t, 12*time.Second, cfg.Cooldown())
	require.Equal(t, ".NS", cfg.Yahoo.Suffix)
	require.Equal(t, "data/findata.db", cfg.Database.SQLitePath)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL())
	require.False(t, cfg.NotifyEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen_addr: ":9000"
alpha_vantage:
  api_key: from-file
  cooldown_sec: 15
database:
  sqlite_path: /tmp/file.db
cache:
  ttl_sec: 60
`), 0o644))

	t.Setenv("SQLITE_PATH", "/tmp/env.db")
	t.Setenv("PRIMARY_COOLDOWN_SEC", "3")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Server.ListenAddr)
	require.Equal(t, "from-file", cfg.AlphaVantage.APIKey)
	require.Equal(t, "/tmp/env.db", cfg.Database.SQLitePath)
	require.Equal(t, 3*time.Second, cfg.Cooldown())
	require.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	require.Equal(t, time.Minute, cfg.CacheTTL())
}

func TestLoad_BadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err := Load(path)
	require.Error(t, err)

	t.Setenv("PRIMARY_COOLDOWN_SEC", "soon")
	_, err = Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
}

func TestPrimaryEnabled(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", false},
		{PlaceholderAPIKey, false},
		{"ABC123", true},
	}
	for _, tt := range tests {
		cfg := &Config{}
		cfg.AlphaVantage.APIKey = tt.key
		require.Equal(t, tt.want, cfg.PrimaryEnabled(), "key %q", tt.key)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Schedule.IngestCron = "not a cron"
	require.Error(t, cfg.Validate())

	cfg.Schedule.IngestCron = "@daily"
	require.NoError(t, cfg.Validate())

	cfg.AlphaVantage.CooldownSec = -1
	require.Error(t, cfg.Validate())
}
