package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowplan-server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
address: 0.0.0.0
port: "9000"
redis_address: localhost:6379
session_secret: `+secret+`
session_ttl: 30m
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 256, cfg.MaxConcurrentRequests)
}

func TestLoad_MissingFileUsesEnvSecret(t *testing.T) {
	t.Setenv("FLOWPLAN_SESSION_SECRET", secret)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("FLOWPLAN_SESSION_SECRET", "")
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session_secret: short\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
